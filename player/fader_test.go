// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFader_Ramp(t *testing.T) {
	t.Parallel()

	// 10ms at 1 kHz is a 10 frame ramp.
	f := NewFader(10 * time.Millisecond)
	if f.SampleFactor() != 1 || !f.Done() {
		t.Fatalf("new fader = %v (done %v), want 1", f.SampleFactor(), f.Done())
	}

	f.Change(-1, 1000, false)
	if f.Target() != 0 {
		t.Fatalf("Target() = %v, want 0", f.Target())
	}
	f.Step(5)
	if !approx(f.SampleFactor(), 0.5) {
		t.Errorf("after 5 frames factor = %v, want 0.5", f.SampleFactor())
	}
	f.Step(100)
	if f.SampleFactor() != 0 || !f.Done() {
		t.Errorf("after overshoot factor = %v, want 0", f.SampleFactor())
	}

	f.Change(1, 1000, false)
	f.Step(2)
	if !approx(f.SampleFactor(), 0.2) {
		t.Errorf("fade in after 2 frames = %v, want 0.2", f.SampleFactor())
	}
	f.Step(8)
	if f.SampleFactor() != 1 {
		t.Errorf("fade in end = %v, want 1", f.SampleFactor())
	}
}

func TestFader_ChangeSameTargetKeepsRamp(t *testing.T) {
	t.Parallel()

	f := NewFader(10 * time.Millisecond)
	f.Change(-1, 1000, false)
	f.Step(3)
	f.Change(-1, 1000, false)
	if !approx(f.SampleFactor(), 0.7) {
		t.Errorf("factor = %v after repeated Change, want 0.7", f.SampleFactor())
	}
	f.Step(1)
	if !approx(f.SampleFactor(), 0.6) {
		t.Errorf("factor = %v, want 0.6", f.SampleFactor())
	}
}

func TestFader_Instant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		duration  time.Duration
		immediate bool
	}{
		{name: "zero duration", duration: 0},
		{name: "shorter than a frame", duration: time.Microsecond},
		{name: "immediate", duration: time.Second, immediate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFader(tt.duration)
			f.Change(-1, 1000, tt.immediate)
			if f.SampleFactor() != 0 || !f.Done() {
				t.Errorf("factor = %v, want 0 at once", f.SampleFactor())
			}
			f.Change(1, 1000, tt.immediate)
			if f.SampleFactor() != 1 {
				t.Errorf("factor = %v, want 1 at once", f.SampleFactor())
			}
		})
	}
}

func TestFader_StepNoop(t *testing.T) {
	t.Parallel()

	f := NewFader(time.Second)
	f.Step(1000)
	if f.SampleFactor() != 1 {
		t.Errorf("idle Step changed factor to %v", f.SampleFactor())
	}
	f.Change(-1, 1000, false)
	f.Step(0)
	f.Step(-4)
	if f.SampleFactor() != 1 {
		t.Errorf("non-positive Step changed factor to %v", f.SampleFactor())
	}
}
