// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always outputs 16-bit stereo, so the returned audio.Source reports
// two channels regardless of the file layout.
//
// When the reader passed to Decode is an io.Seeker the source also
// implements audio.Seeker and reports its length through audio.Lengther;
// otherwise Len returns -1 and seeking fails in the backend:
//
//	f, _ := os.Open("song.mp3")
//	src, err := mp3.Decoder{}.Decode(audio.NewSeekGuard(f))
//	if err != nil {
//	    // not an MP3 stream
//	}
//	_ = audio.SeekFrame(src, 44100*30) // 30s at 44.1kHz
package mp3
