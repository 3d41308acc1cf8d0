// SPDX-License-Identifier: EPL-2.0

//go:build !headless && ((linux && cgo) || windows || darwin)

package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/utils"
)

// oto allows a single context per process, created with the first format
// that asks for one.
var (
	otoOnce   sync.Once
	otoCtx    *oto.Context
	otoFormat audio.Format
	otoErr    error
)

func otoContext(format audio.Format) (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoErr == nil {
			<-ready
			otoFormat = format
		}
	})
	if otoErr != nil {
		return nil, fmt.Errorf("oto context: %w", otoErr)
	}
	if format != otoFormat {
		return nil, fmt.Errorf("%w: have %+v, want %+v", ErrFormatLocked, otoFormat, format)
	}
	return otoCtx, nil
}

// Oto plays samples on the default sound device. oto pulls from a small
// byte queue: Write blocks while the queue is full, which paces the
// player's worker, and an empty queue plays as silence.
type Oto struct {
	player *oto.Player

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	limit   int
	closed  bool
	buf     []byte
}

// otoLatency is the most audio the queue holds ahead of the device.
const otoLatency = 100 * time.Millisecond

// OpenOto is a player.SinkOpener for the system sound device. oto cannot
// pick a device, so device is ignored and DeviceName reports "default".
//
// oto allows one context per process and it keeps the format of the first
// OpenOto call. Opening again with another sample rate or channel count,
// e.g. after Player.SetAudioTarget, fails with ErrFormatLocked and the
// player stops with that error.
func OpenOto(format audio.Format, device string) (player.Sink, error) {
	ctx, err := otoContext(format)
	if err != nil {
		return nil, err
	}

	frameBytes := 2 * format.Channels
	o := &Oto{limit: max(int(otoLatency.Seconds()*float64(format.SampleRate)), 1) * frameBytes}
	o.cond = sync.NewCond(&o.mu)
	o.player = ctx.NewPlayer(o)
	o.player.Play()
	return o, nil
}

// Read feeds oto. It never blocks; missing data is filled with silence.
func (o *Oto) Read(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, io.EOF
	}
	n := copy(p, o.pending)
	o.pending = append(o.pending[:0], o.pending[n:]...)
	clear(p[n:])
	o.cond.Broadcast()
	return len(p), nil
}

func (o *Oto) Write(samples []int16) error {
	if need := 2 * len(samples); cap(o.buf) < need {
		o.buf = make([]byte, need)
	}
	b := o.buf[:utils.Int16sToBytesLE(o.buf[:2*len(samples)], samples)]

	o.mu.Lock()
	defer o.mu.Unlock()

	for len(b) > 0 {
		for !o.closed && len(o.pending) >= o.limit {
			o.cond.Wait()
		}
		if o.closed {
			return ErrSinkClosed
		}
		n := min(len(b), o.limit-len(o.pending))
		o.pending = append(o.pending, b[:n]...)
		b = b[n:]
	}
	return nil
}

// Flush drops queued audio that the device has not played yet.
func (o *Oto) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = o.pending[:0]
	o.cond.Broadcast()
	return nil
}

func (o *Oto) DeviceName() string { return "default" }

func (o *Oto) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()

	if err := o.player.Close(); err != nil {
		return fmt.Errorf("oto close: %w", err)
	}
	return nil
}
