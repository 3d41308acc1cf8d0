// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"math"

	"github.com/ik5/audplay/utils"
)

// SmoothClip is a soft limiter. Magnitudes up to X1 pass unchanged, those
// at or above X2 are pinned to 1 and the range in between bends smoothly
// towards 1. The curve is monotone and has slope 1 at X1.
type SmoothClip struct {
	X1, X2 float64
}

func NewSmoothClip(x1, x2 float64) (SmoothClip, error) {
	if !(x1 >= 0 && x1 < 1 && x2 >= 1 && x1 < x2) {
		return SmoothClip{}, fmt.Errorf("%w: %w: (%v, %v)", ErrInvalidConfiguration, ErrSmoothClip, x1, x2)
	}
	return SmoothClip{X1: x1, X2: x2}, nil
}

// Apply maps y into [-1, 1].
func (c SmoothClip) Apply(y float64) float64 {
	a := math.Abs(y)
	if a <= c.X1 {
		return y
	}
	v := 1.0
	if a < c.X2 {
		// 1 - (1-t)^k with k = L/d has slope d*k/L = 1 at t = 0.
		d := 1 - c.X1
		l := c.X2 - c.X1
		t := (a - c.X1) / l
		v = c.X1 + d*(1-math.Pow(1-t, l/d))
	}
	return math.Copysign(v, y)
}

// outputStage turns decoded frames into the final sample stream.
type outputStage struct {
	fader        *Fader
	clip         SmoothClip
	volume       float64
	volumeAdjust bool
	channels     int
	scratch      []float32
}

// render fills dst with whole frames from is and returns the number of
// samples written. It returns short only when the stream ended, or when a
// pending skip finished fading out.
func (o *outputStage) render(is *InStream, dst []int16) int {
	ch := o.channels
	frames := len(dst) / ch
	if need := frames * ch; cap(o.scratch) < need {
		o.scratch = make([]float32, need)
	}

	gain := 1.0
	if o.volumeAdjust {
		gain = o.volume * is.gain
	}

	skip := is.skipMe.Load()
	written := 0
	for written < frames {
		if skip && o.fader.SampleFactor() == 0 {
			break
		}
		n := is.read(o.scratch[:(frames-written)*ch])
		got := n / ch
		if got > 0 {
			is.playerStartedPlaying.Store(true)
		}

		// Frames read after a skip fade reached silence are dropped.
		emitted := 0
		for ; emitted < got; emitted++ {
			f := o.fader.SampleFactor()
			if skip && f == 0 {
				break
			}
			f *= gain
			base := (written + emitted) * ch
			for c := range ch {
				s := o.clip.Apply(float64(o.scratch[emitted*ch+c]) * f)
				dst[base+c] = utils.Float32ToInt16(float32(s))
			}
			o.fader.Step(1)
		}
		written += emitted
		if emitted < got || got == 0 || is.eof.Load() {
			break
		}
	}
	return written * ch
}
