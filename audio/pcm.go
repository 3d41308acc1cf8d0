// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// IntScale returns the divisor normalizing signed integer PCM of the given
// bit depth to [-1, 1]. Unknown depths are treated as 16-bit.
func IntScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// IntsToFloats converts integer PCM into dst and returns the count written.
func IntsToFloats(dst []float32, src []int, bitDepth int) int {
	scale := IntScale(bitDepth)
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i]) / scale
	}
	return n
}

// SkipFrames reads and drops up to frames frames from src. It returns the
// number of frames actually skipped; io.EOF is not reported as an error.
func SkipFrames(src Source, frames int64) (int64, error) {
	ch := max(src.Channels(), 1)
	buf := make([]float32, max(src.BufSize()-src.BufSize()%ch, ch))
	var skipped int64
	empty := 0
	for skipped < frames {
		want := min(int64(len(buf)/ch), frames-skipped)
		n, err := src.ReadSamples(buf[:want*int64(ch)])
		skipped += int64(n / ch)
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
		if n == 0 {
			empty++
			if empty >= 3 {
				return skipped, nil
			}
			continue
		}
		empty = 0
	}
	return skipped, nil
}
