// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Opener opens a decode session for a song.
type Opener func(Song) (*InStream, error)

// InStreams holds the current stream and the streams prefetched after it.
//
// The current slot is an atomic pointer, so readers never wait for a
// writer that is busy opening a decoder. Writers are serialized by mu,
// which also guards the peeked list. Opening happens with mu held but
// never with the player lock held.
type InStreams struct {
	cur atomic.Pointer[InStream]

	mu     sync.Mutex
	peeked []*InStream
}

// Current returns the current stream with an extra reference, or nil. The
// caller must Release it.
func (c *InStreams) Current() *InStream {
	for {
		is := c.cur.Load()
		if is == nil {
			return nil
		}
		if is.tryAcquire() {
			return is
		}
		// Released between Load and tryAcquire, so the slot has moved on.
	}
}

// OpenCurrent makes song current. A prefetched stream for the same song
// that has not started playing is promoted instead of reopened. When
// opening fails the current slot is left empty.
func (c *InStreams) OpenCurrent(song Song, open Opener) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	is := c.takePeekedLocked(song)
	if is == nil {
		var err error
		if is, err = open(song); err != nil {
			c.replaceLocked(nil)
			return err
		}
	}
	c.replaceLocked(is)
	return nil
}

// takePeekedLocked removes and returns the prefetched stream for song.
// Entries queued before it are stale and get released. Without a match the
// whole list is stale.
func (c *InStreams) takePeekedLocked(song Song) *InStream {
	key := song.Key()
	for i, p := range c.peeked {
		if p.song.Key() != key || p.playerStartedPlaying.Load() {
			continue
		}
		for _, stale := range c.peeked[:i] {
			stale.Release()
		}
		c.peeked = append([]*InStream(nil), c.peeked[i+1:]...)
		return p
	}
	c.releasePeekedLocked()
	return nil
}

func (c *InStreams) replaceLocked(is *InStream) {
	if old := c.cur.Swap(is); old != nil {
		old.Release()
	}
}

func (c *InStreams) releasePeekedLocked() {
	for _, p := range c.peeked {
		p.Release()
	}
	c.peeked = nil
}

// PeekNext makes the prefetch list match songs. Streams already open for
// a listed song are kept, the rest are opened, and the ones no longer
// listed are released. Songs that fail to open are left out and their
// errors joined.
func (c *InStreams) PeekNext(songs []Song, open Opener) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	have := make(map[string][]*InStream, len(c.peeked))
	for _, p := range c.peeked {
		have[p.song.Key()] = append(have[p.song.Key()], p)
	}

	next := make([]*InStream, 0, len(songs))
	var errs []error
	for _, song := range songs {
		key := song.Key()
		if ps := have[key]; len(ps) > 0 {
			next = append(next, ps[0])
			have[key] = ps[1:]
			continue
		}
		is, err := open(song)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		next = append(next, is)
	}

	for _, ps := range have {
		for _, p := range ps {
			p.Release()
		}
	}
	c.peeked = next
	return errors.Join(errs...)
}

// Advance promotes the first prefetched stream to current and reports
// whether there was one. Streams that already ended or started playing
// are dropped on the way.
func (c *InStreams) Advance() bool { return c.advance(nil) }

// AdvanceTo is Advance for a known next song: the head of the prefetch
// list is promoted only when it was opened for song. On a mismatch the
// list is left alone and false is returned.
func (c *InStreams) AdvanceTo(song Song) bool { return c.advance(song) }

func (c *InStreams) advance(song Song) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.peeked) > 0 {
		next := c.peeked[0]
		if next.eof.Load() || next.playerStartedPlaying.Load() {
			c.peeked = c.peeked[1:]
			next.Release()
			continue
		}
		if song != nil && next.song.Key() != song.Key() {
			return false
		}
		c.peeked = c.peeked[1:]
		c.replaceLocked(next)
		return true
	}
	return false
}

// Clear releases every stream held by the cache.
func (c *InStreams) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replaceLocked(nil)
	c.releasePeekedLocked()
}

// Peeked returns the prefetched songs in order.
func (c *InStreams) Peeked() []Song {
	c.mu.Lock()
	defer c.mu.Unlock()

	return lo.Map(c.peeked, func(p *InStream, _ int) Song { return p.song })
}
