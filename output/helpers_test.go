// SPDX-License-Identifier: EPL-2.0

package output

import (
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/player"
)

type songKey string

func (s songKey) Key() string { return string(s) }

type oneSong struct{ done bool }

func (q *oneSong) Next() (player.Song, error) {
	if q.done {
		return nil, player.ErrEndOfQueue
	}
	q.done = true
	return songKey("tone"), nil
}

type constDecoder struct{ frames int }

func (d constDecoder) Open(_ player.Song, format audio.Format) (audio.Source, error) {
	return audiotest.NewConstantSource(format.SampleRate, format.Channels, d.frames, 0.25), nil
}
