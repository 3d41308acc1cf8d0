// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/flac"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/player"
)

// ErrNotMedia is returned for songs the Decoder cannot read bytes for.
var ErrNotMedia = errors.New("song does not provide media")

// Media is a song whose encoded bytes can be opened. Format is the
// registry key of its container, usually the file extension.
type Media interface {
	player.Song
	OpenMedia() (io.ReadSeekCloser, error)
	Format() string
}

// NewRegistry returns a registry with every bundled format.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("flac", flac.Decoder{})
	return reg
}

// Decoder opens Media songs through a format registry and converts them to
// the format the player asks for. It implements player.Decoder.
type Decoder struct {
	Registry *audio.Registry
}

func NewDecoder() *Decoder {
	return &Decoder{Registry: NewRegistry()}
}

func (d *Decoder) Open(song player.Song, format audio.Format) (audio.Source, error) {
	m, ok := song.(Media)
	if !ok {
		return nil, fmt.Errorf("%s: %w", song.Key(), ErrNotMedia)
	}
	dec, ok := d.Registry.Get(m.Format())
	if !ok {
		return nil, fmt.Errorf("%q: %w", m.Format(), audio.ErrUnknownFormat)
	}

	r, err := m.OpenMedia()
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	guard := audio.NewSeekGuard(r)

	src, err := dec.Decode(guard)
	if err != nil {
		guard.Close()
		return nil, fmt.Errorf("%w", err)
	}
	out, err := Convert(src, format)
	if err != nil {
		src.Close()
		guard.Close()
		return nil, err
	}
	return &closingSource{Source: out, media: guard}, nil
}

// closingSource closes the media reader together with the decoder chain.
type closingSource struct {
	audio.Source
	media io.Closer
}

func (s *closingSource) Close() error {
	return errors.Join(s.Source.Close(), s.media.Close())
}

func (s *closingSource) SeekFrame(frame int64) error { return audio.SeekFrame(s.Source, frame) }
func (s *closingSource) Len() int64                  { return audio.LenFrames(s.Source) }
func (s *closingSource) Metadata() map[string]string { return audio.MetadataOf(s.Source) }

// FileSong is a song stored in a local file.
type FileSong struct {
	Path string
}

func (s FileSong) Key() string { return s.Path }

func (s FileSong) Format() string { return filepath.Ext(s.Path) }

func (s FileSong) OpenMedia() (io.ReadSeekCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GainSong is a FileSong with a replay gain in dB known up front.
type GainSong struct {
	FileSong
	DB float64
}

func (s GainSong) Gain() float64 { return s.DB }
