// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// Seek, Len and Metadata pass through to src when src supports them, with
// frame positions converted between the two rates.
type Resampler struct {
	src      Source
	srcRate  int64
	dstRate  float64
	ratio    float64 // src rate / dst rate: source frames consumed per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	// fractional position between frames[1] and frames[2]
	pos float64

	srcBuf []float32
	eof    bool

	filterState []float32
	filterWarm  bool
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		srcRate:     int64(src.SampleRate()),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterState: make([]float32, channels),
	}
	if r.useFilter {
		// one-pole low-pass, cutoff roughly at the destination Nyquist
		r.filterAlpha = 0.5
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Len reports the source length converted to output frames.
func (r *Resampler) Len() int64 {
	n := LenFrames(r.src)
	if n < 0 {
		return -1
	}
	return n * int64(r.dstRate) / r.srcRate
}

// SeekFrame moves to the output frame position, seeking the source to the matching
// source frame and dropping interpolation state.
func (r *Resampler) SeekFrame(frame int64) error {
	srcFrame := frame * r.srcRate / int64(r.dstRate)
	if err := SeekFrame(r.src, srcFrame); err != nil {
		return err
	}
	r.reset()
	return nil
}

func (r *Resampler) Metadata() map[string]string { return MetadataOf(r.src) }

func (r *Resampler) reset() {
	r.hasFrame = [4]bool{}
	r.primed = false
	r.pos = 0
	r.eof = false
	r.filterWarm = false
}

// readFrame reads one source frame into f, applying the low-pass filter.
// ok is false when the source had no frame.
func (r *Resampler) readFrame(f []float32) (bool, error) {
	n, err := r.src.ReadSamples(r.srcBuf)
	if n > 0 {
		copy(f, r.srcBuf[:n])
		if r.useFilter {
			if !r.filterWarm {
				// start from the first sample to avoid a warm-up transient
				copy(r.filterState, f)
				r.filterWarm = true
			}
			for c := range r.channels {
				f[c] = r.filterAlpha*f[c] + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = f[c]
			}
		}
	}
	if err == io.EOF {
		r.eof = true
		return n > 0, nil
	}
	if err != nil {
		return n > 0, fmt.Errorf("%w", err)
	}
	return n > 0, nil
}

// prime fills the ring. frames[0] duplicates the first frame so the very
// first source frame is also the first output frame.
func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.frames[0], r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < 4; i++ {
		if err := r.fill(i); err != nil {
			return err
		}
	}
	r.primed = true
	return nil
}

// fill reads the next source frame into slot i, duplicating slot i-1 once
// the source is exhausted.
func (r *Resampler) fill(i int) error {
	ok := false
	if !r.eof {
		var err error
		if ok, err = r.readFrame(r.frames[i]); err != nil {
			return err
		}
	}
	if !ok {
		copy(r.frames[i], r.frames[i-1])
	}
	r.hasFrame[i] = ok
	return nil
}

// shift drops frames[0] and pulls the next source frame into frames[3].
// It returns io.EOF once no real frame is left to output.
func (r *Resampler) shift() error {
	first := r.frames[0]
	copy(r.frames[:], r.frames[1:])
	r.frames[3] = first
	copy(r.hasFrame[:], r.hasFrame[1:])

	if err := r.fill(3); err != nil {
		return err
	}
	if !r.hasFrame[1] {
		return io.EOF
	}
	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		if !r.hasFrame[1] {
			return written * r.channels, io.EOF
		}
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				if err == io.EOF {
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			out[c] = utils.CubicInterpolate(r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
