// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"os"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/player"
)

// WAVFile records the rendered stream into a WAV file. The file is
// complete once the sink is closed.
type WAVFile struct {
	f *os.File
	w *wav.Writer
}

func CreateWAVFile(path string, format audio.Format) (*WAVFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	w, err := wav.NewWriter(f, format.SampleRate, format.Channels)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &WAVFile{f: f, w: w}, nil
}

// WAVFileOpener returns a player.SinkOpener writing to path. The device
// argument is ignored.
func WAVFileOpener(path string) player.SinkOpener {
	return func(format audio.Format, _ string) (player.Sink, error) {
		return CreateWAVFile(path, format)
	}
}

func (s *WAVFile) Write(samples []int16) error {
	return s.w.Write(samples)
}

// Frames returns the number of frames recorded so far.
func (s *WAVFile) Frames() int64 { return s.w.Frames() }

func (s *WAVFile) DeviceName() string { return s.f.Name() }

func (s *WAVFile) Close() error {
	return errors.Join(s.w.Close(), s.f.Close())
}
