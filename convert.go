// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// Convert wraps src so it produces format. The resampler is only inserted
// when the rates differ and the channel mixer only when the counts differ.
func Convert(src audio.Source, format audio.Format) (audio.Source, error) {
	out := src
	if out.SampleRate() != format.SampleRate {
		out = audio.NewResampler(out, format.SampleRate)
	}
	if out.Channels() != format.Channels {
		mixer, err := audio.NewChannelMixer(out, format.Channels)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		out = mixer
	}
	return out, nil
}

// ReadAll16 converts src to format and collects everything as interleaved
// 16-bit PCM.
//
// bufferSize is the number of float32 values read per call; larger buffers
// mean fewer calls at the cost of memory.
func ReadAll16(src audio.Source, format audio.Format, bufferSize int) ([]int16, error) {
	conv, err := Convert(src, format)
	if err != nil {
		return nil, err
	}

	bufferSize = max(bufferSize-bufferSize%format.Channels, format.Channels)
	pcm16 := make([]int16, 0, format.SampleRate*format.Channels)
	buf := make([]float32, bufferSize)

	for {
		n, err := conv.ReadSamples(buf)
		if n > 0 {
			start := len(pcm16)
			pcm16 = append(pcm16, make([]int16, n)...)
			utils.Float32sToInt16s(pcm16[start:], buf[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	return pcm16, nil
}
