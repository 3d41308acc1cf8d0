// SPDX-License-Identifier: EPL-2.0

package player

import "github.com/ik5/audplay/audio"

// Song is an opaque handle owned by the queue. The player only compares
// songs by Key and hands them to the Decoder.
type Song interface {
	Key() string
}

// Gainer is implemented by songs that carry their own replay gain, in dB.
type Gainer interface {
	Gain() float64
}

// Queue is a forward-only, possibly infinite, sequence of songs. Next
// returns ErrEndOfQueue once nothing is left. The player calls it only
// while holding its lock and never rewinds it.
type Queue interface {
	Next() (Song, error)
}

// PeekQueue reports upcoming songs without consuming them. It is used to
// prefetch decode sessions ahead of the current song.
type PeekQueue interface {
	Peek(n int) ([]Song, error)
}

// Decoder opens a decode session for a song. The returned source must
// already be in the requested format: resampling and channel mapping are
// the decoder's job.
type Decoder interface {
	Open(song Song, format audio.Format) (audio.Source, error)
}

// SongChange describes a transition of the current song.
type SongChange struct {
	Old, New       Song
	Skipped        bool
	ErrorOnOpening bool
}
