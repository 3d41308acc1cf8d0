// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gopxl/beep/v2/flac"
	"github.com/ik5/audplay/audio"
	mflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"
)

// streamer is the subset of beep.StreamSeekCloser the source needs.
type streamer interface {
	Stream(samples [][2]float64) (int, bool)
	Err() error
	Len() int
	Seek(p int) error
}

type source struct {
	stream     streamer
	sampleRate int
	channels   int
	metadata   map[string]string
	buf        [][2]float64
}

func (s *source) SampleRate() int             { return s.sampleRate }
func (s *source) Channels() int               { return s.channels }
func (s *source) BufSize() int                { return 4096 }
func (s *source) Close() error                { return nil }
func (s *source) Len() int64                  { return int64(s.stream.Len()) }
func (s *source) Metadata() map[string]string { return s.metadata }

func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("frame %d: %w", frame, audio.ErrNegativeSeek)
	}
	if err := s.stream.Seek(int(frame)); err != nil {
		return fmt.Errorf("flac seek: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	frames := len(dst) / s.channels
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if cap(s.buf) < frames {
		s.buf = make([][2]float64, frames)
	}

	n, ok := s.stream.Stream(s.buf[:frames])
	if n == 0 {
		if err := s.stream.Err(); err != nil {
			return 0, fmt.Errorf("flac read: %w", err)
		}
		if !ok {
			return 0, io.EOF
		}
		return 0, nil
	}

	if s.channels == 1 {
		for i := range n {
			dst[i] = float32(s.buf[i][0])
		}
		return n, nil
	}
	for i := range n {
		dst[2*i] = float32(s.buf[i][0])
		dst[2*i+1] = float32(s.buf[i][1])
	}
	return 2 * n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := audio.ReadSeekerOf(r)
	if err != nil {
		return nil, err
	}

	sig := make([]byte, 4)
	if _, err := io.ReadFull(rs, sig); err != nil || !bytes.Equal(sig, []byte("fLaC")) {
		return nil, ErrNotFlacFile
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	metadata, err := readTags(rs)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	stream, format, err := flac.Decode(rs)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := 2
	if format.NumChannels == 1 {
		channels = 1
	}
	return &source{
		stream:     stream,
		sampleRate: int(format.SampleRate),
		channels:   channels,
		metadata:   metadata,
	}, nil
}

// readTags collects the VORBIS_COMMENT block, if any, with lower-case keys.
func readTags(r io.Reader) (map[string]string, error) {
	stream, err := mflac.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("flac metadata: %w", err)
	}
	md := map[string]string{}
	for _, block := range stream.Blocks {
		vc, ok := block.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		for _, tag := range vc.Tags {
			k := strings.ToLower(tag[0])
			if _, dup := md[k]; !dup && k != "" {
				md[k] = tag[1]
			}
		}
	}
	return md, nil
}
