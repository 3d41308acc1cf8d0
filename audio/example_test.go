// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/internal/audiotest"
)

// Example_resampler demonstrates how to use the Resampler to change sample rates.
func Example_resampler() {
	// 1 second of a 440Hz tone at 44.1kHz
	source := audiotest.NewSineSource(44100, 1, 44100, 440.0)

	resampler := audio.NewResampler(source, 16000)

	fmt.Printf("Output sample rate: %d Hz\n", resampler.SampleRate())
	fmt.Printf("Length: %d frames\n", resampler.Len())

	buf := make([]float32, 4096)
	totalSamples := 0

	for {
		n, err := resampler.ReadSamples(buf)
		totalSamples += n

		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	fmt.Printf("Total samples read: %d\n", totalSamples)
	// Output:
	// Output sample rate: 16000 Hz
	// Length: 16000 frames
	// Total samples read: 16000
}

// Example_targetFormat converts a mono 22.05kHz source into the
// 44.1kHz stereo layout a player renders.
func Example_targetFormat() {
	source := audiotest.NewConstantSource(22050, 1, 22050, 0.5)
	target := audio.Format{SampleRate: 44100, Channels: 2}

	var src audio.Source = audio.NewResampler(source, target.SampleRate)
	src, _ = audio.NewChannelMixer(src, target.Channels)

	fmt.Printf("%+v\n", audio.FormatOf(src))

	buf := make([]float32, 4)
	n, _ := src.ReadSamples(buf)
	fmt.Println(n, buf)
	// Output:
	// {SampleRate:44100 Channels:2}
	// 4 [0.5 0.5 0.5 0.5]
}

// Example_seek shows seeking a source by frame.
func Example_seek() {
	source := audiotest.NewRampSource(8000, 1, 8000)

	if err := audio.SeekFrame(source, 4000); err != nil {
		fmt.Println(err)
		return
	}

	buf := make([]float32, 1)
	source.ReadSamples(buf)
	fmt.Println(buf[0])

	fmt.Println(audio.SeekFrame(source, -1))
	// Output:
	// 4000
	// frame -1: absolute seek to negative offset
}
