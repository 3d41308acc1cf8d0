// SPDX-License-Identifier: EPL-2.0

// Package audio provides the stream primitives the player is built on.
//
// # Source Interface
//
// Every decoder and processor produces a Source of interleaved float32
// samples in [-1.0, 1.0]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Optional capabilities are discovered with type assertions, the same way
// io.Seeker is:
//   - Seeker: SeekFrame(frame int64) error
//   - Lengther: Len() int64, -1 when unknown
//   - Tagger: Metadata() map[string]string
//
// SeekFrame, LenFrames and MetadataOf wrap those assertions. Processors in
// this package pass all three through to the wrapped source.
//
// # Format Conversion
//
// Resampler changes the sample rate with cubic interpolation, ChannelMixer
// changes the channel count:
//
//	var src audio.Source = audio.NewResampler(decoded, 44100)
//	src, err := audio.NewChannelMixer(src, 2)
//
// # Format Registry
//
// The registry maps format keys (file extensions) to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("song.WAV")
//
// # Seeking Safely
//
// Some container backends treat an absolute seek to a negative byte offset
// as undefined input. Readers given to decoders should be wrapped with
// NewSeekGuard, which rejects such a seek with ErrNegativeSeek before it
// reaches the backend.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available. It may return
// n > 0 together with io.EOF for the final chunk:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
