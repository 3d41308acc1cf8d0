// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"
	"strings"

	"github.com/ik5/audplay/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of float32 values decoded, always a
	// multiple of Channels.
	Read([]float32) (int, error)
	// Length is the stream length in frames, 0 when unknown.
	Length() int64
	SetPosition(pos int64) error
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	metadata   map[string]string
}

func (s *source) SampleRate() int             { return s.sampleRate }
func (s *source) Channels() int               { return s.channels }
func (s *source) Close() error                { return nil }
func (s *source) BufSize() int                { return 4096 }
func (s *source) Metadata() map[string]string { return s.metadata }

func (s *source) Len() int64 {
	n := s.dec.Length()
	if n <= 0 {
		return -1
	}
	return n
}

func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("frame %d: %w", frame, audio.ErrNegativeSeek)
	}
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis seek: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	whole := len(dst) - len(dst)%s.channels
	if whole == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	return s.dec.Read(dst[:whole])
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src := newSource(dec)
	src.metadata = ParseComments(dec.CommentHeader().Comments)
	return src, nil
}

func newSource(dec oggReader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}
}

// ParseComments turns "KEY=value" vorbis comments into a lower-case keyed
// map. Repeated keys keep the first value.
func ParseComments(comments []string) map[string]string {
	md := make(map[string]string, len(comments))
	for _, c := range comments {
		k, v, ok := strings.Cut(c, "=")
		if !ok || k == "" {
			continue
		}
		k = strings.ToLower(k)
		if _, dup := md[k]; !dup {
			md[k] = v
		}
	}
	return md
}
