// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"
	"time"
)

// Fader produces the fade envelope applied to the output. The ramp is
// measured in frames, so it does not depend on how rendering is batched.
//
// A Fader is not safe for concurrent use; the Player guards it with its
// lock.
type Fader struct {
	duration time.Duration
	factor   float64
	target   float64
	inc      float64
}

// NewFader returns a fader at full level. duration is the length of a
// complete ramp between 0 and 1.
func NewFader(duration time.Duration) *Fader {
	return &Fader{duration: duration, factor: 1, target: 1}
}

// Change starts a ramp towards 0 (dir < 0) or 1 (dir >= 0). Asking for the
// target that is already set keeps the running ramp as it is.
func (f *Fader) Change(dir int, sampleRate int, immediate bool) {
	target := 1.0
	if dir < 0 {
		target = 0
	}

	frames := f.duration.Seconds() * float64(sampleRate)
	if immediate || frames < 1 {
		f.target = target
		f.factor = target
		return
	}
	if f.target == target {
		return
	}
	f.target = target
	f.inc = 1 / frames
}

// SampleFactor returns the factor for the next frame.
func (f *Fader) SampleFactor() float64 { return f.factor }

// Target returns the level the fader is heading to.
func (f *Fader) Target() float64 { return f.target }

// Done reports whether the factor reached its target.
func (f *Fader) Done() bool { return f.factor == f.target }

// Step advances the ramp by n frames without overshooting the target.
func (f *Fader) Step(n int) {
	if f.factor == f.target || n <= 0 {
		return
	}
	delta := f.inc * float64(n)
	// Land exactly on the target despite rounding in the increments.
	if math.Abs(f.target-f.factor) <= delta*(1+1e-9) {
		f.factor = f.target
		return
	}
	if f.target > f.factor {
		f.factor += delta
	} else {
		f.factor -= delta
	}
}
