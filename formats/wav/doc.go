// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files on top of
// github.com/go-audio/wav.
//
// The Decoder accepts integer PCM at 16, 24 or 32 bits (plain or
// WAVE_FORMAT_EXTENSIBLE) with any rate and channel count. Its sources
// report their length from the data chunk size, expose LIST/INFO tags as
// metadata and support frame seeking.
//
// Two writers are provided. WriteWAV16 emits a complete file in one call to
// any io.Writer. Writer streams to an io.WriteSeeker and fixes the header up
// on Close, which is what a long running recording needs:
//
//	f, _ := os.Create("out.wav")
//	w, _ := wav.NewWriter(f, 44100, 2)
//	for chunk := range chunks {
//		w.Write(chunk)
//	}
//	w.Close()
//	f.Close()
package wav
