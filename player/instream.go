// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// emptyReadLimit is how many successive empty reads count as end of stream.
const emptyReadLimit = 3

// InStream is one decode session for one song. It is reference counted:
// the cache holds one reference and every caller of InStreams.Current holds
// another until it calls Release. The source is closed with the last
// reference.
type InStream struct {
	id       uuid.UUID
	song     Song
	src      audio.Source
	format   audio.Format
	length   int64
	metadata map[string]string
	gain     float64
	log      *slog.Logger

	refs atomic.Int32

	// Guarded by the player lock.
	frame      int64
	emptyReads int

	playerStartedPlaying atomic.Bool
	skipMe               atomic.Bool
	eof                  atomic.Bool
}

// openInStream opens song with dec and checks the result matches format.
func openInStream(dec Decoder, song Song, format audio.Format, log *slog.Logger) (*InStream, error) {
	src, err := dec.Open(song, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecoderOpen, song.Key(), err)
	}
	if got := audio.FormatOf(src); got != format {
		src.Close()
		return nil, fmt.Errorf("%w: %s: %w: got %+v, want %+v", ErrDecoderOpen, song.Key(), ErrFormatMismatch, got, format)
	}

	is := &InStream{
		id:       uuid.New(),
		song:     song,
		src:      src,
		format:   format,
		length:   audio.LenFrames(src),
		metadata: audio.MetadataOf(src),
	}
	is.gain = gainFactor(song, is.metadata)
	is.log = log.With("stream", is.id.String(), "song", song.Key())
	is.refs.Store(1)
	is.log.Debug("stream opened", "length", is.length, "gain", is.gain)
	return is, nil
}

// gainFactor resolves replay gain: the song's own value wins over the
// replaygain_track_gain tag.
func gainFactor(song Song, metadata map[string]string) float64 {
	if g, ok := song.(Gainer); ok {
		return utils.DBToFactor(g.Gain())
	}
	if db, ok := utils.ParseDB(metadata["replaygain_track_gain"]); ok {
		return utils.DBToFactor(db)
	}
	return 1
}

func (is *InStream) ID() uuid.UUID { return is.id }
func (is *InStream) Song() Song    { return is.song }

// GainFactor is the linear replay gain, 1 when the song has none.
func (is *InStream) GainFactor() float64 { return is.gain }

// Metadata returns a copy of the decoder's tags.
func (is *InStream) Metadata() map[string]string { return maps.Clone(is.metadata) }

// Position is the playback position in seconds.
func (is *InStream) Position() float64 {
	return float64(is.frame) / float64(is.format.SampleRate)
}

// Length returns the duration in seconds, and false when it is unknown.
func (is *InStream) Length() (float64, bool) {
	if is.length <= 0 {
		return 0, false
	}
	return float64(is.length) / float64(is.format.SampleRate), true
}

func (is *InStream) PlayerStartedPlaying() bool { return is.playerStartedPlaying.Load() }
func (is *InStream) SkipPending() bool          { return is.skipMe.Load() }
func (is *InStream) EOF() bool                  { return is.eof.Load() }

// Refs returns the current reference count.
func (is *InStream) Refs() int32 { return is.refs.Load() }

// Acquire adds a reference and returns is.
func (is *InStream) Acquire() *InStream {
	is.refs.Add(1)
	return is
}

// tryAcquire adds a reference unless the stream was already released.
func (is *InStream) tryAcquire() bool {
	for {
		n := is.refs.Load()
		if n <= 0 {
			return false
		}
		if is.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference and closes the session with the last one.
func (is *InStream) Release() {
	switch n := is.refs.Add(-1); {
	case n == 0:
		if err := is.src.Close(); err != nil {
			is.log.Warn("closing stream", "error", err)
		}
		is.log.Debug("stream closed")
	case n < 0:
		panic("player: InStream released more often than acquired")
	}
}

// read fills dst with whole frames. Decode errors and repeated empty reads
// end the stream instead of failing the render loop.
func (is *InStream) read(dst []float32) int {
	if is.eof.Load() {
		return 0
	}
	ch := is.format.Channels
	for {
		n, err := is.src.ReadSamples(dst)
		n -= n % ch
		is.frame += int64(n / ch)

		switch {
		case err == io.EOF:
			is.eof.Store(true)
			return n
		case err != nil:
			is.log.Warn("decode error, ending stream", "error", err)
			is.eof.Store(true)
			return n
		case n == 0:
			is.emptyReads++
			if is.emptyReads >= emptyReadLimit {
				is.eof.Store(true)
				return 0
			}
			continue
		}
		is.emptyReads = 0
		return n
	}
}

// seek moves to seconds, clamped at the start.
func (is *InStream) seek(seconds float64) error {
	frame := max(int64(seconds*float64(is.format.SampleRate)), 0)
	if err := audio.SeekFrame(is.src, frame); err != nil {
		return err
	}
	is.frame = frame
	is.emptyReads = 0
	is.eof.Store(false)
	return nil
}
