// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/player"
)

// Discard drops all samples. With Realtime set, Write sleeps for as long
// as the samples would take to play.
type Discard struct {
	Format   audio.Format
	Realtime bool

	frames atomic.Int64
}

// DiscardOpener returns a player.SinkOpener for Discard sinks.
func DiscardOpener(realtime bool) player.SinkOpener {
	return func(format audio.Format, _ string) (player.Sink, error) {
		return &Discard{Format: format, Realtime: realtime}, nil
	}
}

func (d *Discard) Write(samples []int16) error {
	frames := len(samples) / d.Format.Channels
	d.frames.Add(int64(frames))
	if d.Realtime && d.Format.SampleRate > 0 {
		time.Sleep(time.Duration(frames) * time.Second / time.Duration(d.Format.SampleRate))
	}
	return nil
}

// Frames returns how many frames were dropped.
func (d *Discard) Frames() int64 { return d.frames.Load() }

func (d *Discard) DeviceName() string { return "discard" }

func (d *Discard) Close() error { return nil }
