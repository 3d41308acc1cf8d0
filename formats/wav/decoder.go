// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"strings"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audplay/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of gowav.Decoder used while playing.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec    pcmReader
	reopen func() (pcmReader, error)

	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	metadata   map[string]string
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int             { return s.sampleRate }
func (s *source) Channels() int               { return s.channels }
func (s *source) Close() error                { return nil }
func (s *source) Len() int64                  { return s.frames }
func (s *source) Metadata() map[string]string { return s.metadata }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	whole := len(dst) - len(dst)%s.channels
	if whole == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < whole {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, whole),
			Format:         &goaudio.Format{NumChannels: s.channels, SampleRate: s.sampleRate},
			SourceBitDepth: s.bitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:whole]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("wav read: %w", err)
		}
		return 0, io.EOF
	}

	return audio.IntsToFloats(dst, s.intBuf.Data[:n], s.bitDepth), nil
}

// SeekFrame restarts the PCM chunk and discards frames up to the target. RIFF
// chunks are read sequentially by the backend, so there is no direct jump.
func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("frame %d: %w", frame, audio.ErrNegativeSeek)
	}
	dec, err := s.reopen()
	if err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	s.dec = dec
	if _, err := audio.SkipFrames(s, frame); err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := audio.ReadSeekerOf(r)
	if err != nil {
		return nil, err
	}

	probe := gowav.NewDecoder(rs)
	if !probe.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if f := probe.WavAudioFormat; f != formatPCM && f != formatExtensible {
		return nil, fmt.Errorf("format tag %#x: %w", f, ErrNotPCM)
	}
	bitDepth := int(probe.BitDepth)
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}
	channels := int(probe.NumChans)
	sampleRate := int(probe.SampleRate)
	probe.ReadMetadata()
	metadata := metadataMap(probe.Metadata)

	var frames int64 = -1
	open := func() (pcmReader, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		dec := gowav.NewDecoder(rs)
		dec.ReadInfo()
		if err := dec.FwdToPCM(); err != nil {
			return nil, err
		}
		if frameSize := int64(channels * bitDepth / 8); frameSize > 0 {
			frames = int64(dec.PCMSize) / frameSize
		}
		return dec, nil
	}

	dec, err := open()
	if err != nil {
		return nil, fmt.Errorf("locating PCM data: %w", err)
	}

	return &source{
		dec:        dec,
		reopen:     open,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     frames,
		metadata:   metadata,
	}, nil
}

// metadataMap flattens the LIST/INFO chunk into the lower-case tag names
// used by the other decoders.
func metadataMap(m *gowav.Metadata) map[string]string {
	if m == nil {
		return nil
	}
	md := map[string]string{}
	set := func(k, v string) {
		if v = strings.TrimSpace(strings.TrimRight(v, "\x00")); v != "" {
			md[k] = v
		}
	}
	set("title", m.Title)
	set("artist", m.Artist)
	set("album", m.Product)
	set("genre", m.Genre)
	set("comment", m.Comments)
	set("date", m.CreationDate)
	set("tracknumber", m.TrackNbr)
	set("copyright", m.Copyright)
	set("software", m.Software)
	return md
}
