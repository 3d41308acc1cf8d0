// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"io"
)

// SeekGuard wraps a ReadSeeker handed to a container backend. An absolute
// seek to a negative offset is invalid input for several backends, so it is
// rejected here with ErrNegativeSeek instead of being forwarded.
type SeekGuard struct {
	rs io.ReadSeeker
}

func NewSeekGuard(rs io.ReadSeeker) *SeekGuard {
	return &SeekGuard{rs: rs}
}

func (g *SeekGuard) Read(p []byte) (int, error) {
	return g.rs.Read(p)
}

func (g *SeekGuard) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekStart && offset < 0 {
		return 0, fmt.Errorf("seek to %d: %w", offset, ErrNegativeSeek)
	}

	return g.rs.Seek(offset, whence)
}

// Close closes the wrapped reader when it is an io.Closer.
func (g *SeekGuard) Close() error {
	if c, ok := g.rs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadSeekerOf returns r itself when it can seek, otherwise the whole of r
// buffered in memory. The container backends need random access.
func ReadSeekerOf(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}
	return bytes.NewReader(data), nil
}

// SeekFrame seeks src when it implements Seeker.
func SeekFrame(src Source, frame int64) error {
	s, ok := src.(Seeker)
	if !ok {
		return ErrSeekUnsupported
	}
	if frame < 0 {
		return fmt.Errorf("frame %d: %w", frame, ErrNegativeSeek)
	}
	return s.SeekFrame(frame)
}

// LenFrames returns the length of src in frames or -1 when unknown.
func LenFrames(src Source) int64 {
	if l, ok := src.(Lengther); ok {
		return l.Len()
	}
	return -1
}

// MetadataOf returns the metadata of src, nil when it has none.
func MetadataOf(src Source) map[string]string {
	if t, ok := src.(Tagger); ok {
		return t.Metadata()
	}
	return nil
}
