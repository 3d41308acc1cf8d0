// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"time"
)

// State is the worker's view of playback.
type State int32

const (
	Idle State = iota
	Opening
	Playing
	Fading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Opening:
		return "opening"
	case Playing:
		return "playing"
	case Fading:
		return "fading"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// idleWait bounds how long the live worker sleeps when nothing was rendered.
const idleWait = 10 * time.Millisecond

// queueSpin is the pause between attempts to take the queue flag.
const queueSpin = 100 * time.Microsecond

// peekRetry is how often a worker tops up a prefetch list that is shorter
// than PeekDepth, e.g. after songs were appended or a prefetch open failed.
const peekRetry = 250 * time.Millisecond

// lockQueue takes the advisory queue flag. It must be called with mu held
// and may drop mu while it waits, so callers re-check state afterwards.
func (p *Player) lockQueue() {
	for p.queueBusy.Load() {
		p.mu.Unlock()
		time.Sleep(queueSpin)
		p.mu.Lock()
	}
	p.queueBusy.Store(true)
}

func (p *Player) unlockQueue() { p.queueBusy.Store(false) }

// nextSongLocked moves to the next song of the queue. With maybeFade, an
// audible current song is faded out first and the worker finishes the skip
// once the fade reaches silence; a skip requested while such a fade is
// pending is absorbed by it.
//
// It reports whether a new stream is current. The error is non-nil when
// playback had to stop because the queue gave nothing more, or ErrClosed
// when the player was closed while this call waited for the queue flag.
// A song heading the prefetch list is promoted without a decoder open.
// mu is dropped while the decoder opens.
func (p *Player) nextSongLocked(skipped, maybeFade bool) (bool, error) {
	if maybeFade {
		if is := p.streams.Current(); is != nil {
			pending := is.skipMe.Load()
			fade := !pending && p.playing && is.playerStartedPlaying.Load() && p.fader.SampleFactor() != 0
			if fade {
				p.fader.Change(-1, p.cfg.SampleRate, false)
				is.skipMe.Store(true)
				p.state = Fading
			}
			is.Release()
			if pending || fade {
				p.wakeWorker()
				return true, nil
			}
		}
	}

	if skipped {
		p.outOfSync = true
	}

	p.lockQueue()
	defer p.unlockQueue()

	if p.closed {
		return false, ErrClosed
	}
	if p.queue == nil {
		p.stopLocked(ErrNoQueue)
		return false, ErrNoQueue
	}

	old := p.curSong
	p.curSong = nil
	p.state = Opening

	song, err := p.queue.Next()
	if err != nil {
		if errors.Is(err, ErrEndOfQueue) {
			err = ErrQueueExhausted
		} else {
			err = fmt.Errorf("%w: %w", ErrQueueExhausted, err)
		}
		p.log.Info("queue exhausted", "error", err)
		p.mu.Unlock()
		p.streams.Clear()
		p.mu.Lock()
		p.stopLocked(err)
		return false, err
	}
	p.curSong = song

	open := p.openerLocked()
	p.mu.Unlock()
	if !p.streams.AdvanceTo(song) {
		err = p.streams.OpenCurrent(song, open)
	}
	p.mu.Lock()

	if err != nil {
		p.log.Warn("cannot open input stream", "song", song.Key(), "error", err)
	} else {
		p.fader.Change(1, p.cfg.SampleRate, false)
	}
	p.state = Idle
	if p.playing {
		p.state = Playing
	}
	p.notifySongChangeLocked(SongChange{Old: old, New: song, Skipped: skipped, ErrorOnOpening: err != nil})
	p.peeksDirty = true
	p.wakeWorker()
	return err == nil, nil
}

// fillLocked renders into dst, moving through songs as they end or finish
// a skip fade. It returns the number of samples written, short only when
// playback stopped.
func (p *Player) fillLocked(dst []int16) int {
	written := 0
	for written < len(dst) && p.playing {
		is := p.streams.Current()
		if is == nil {
			// The last open failed: skip ahead until a song opens or the
			// queue runs out.
			if _, err := p.nextSongLocked(false, false); err != nil {
				return written
			}
			continue
		}

		n := p.out.render(is, dst[written:])
		written += n

		switch {
		case is.skipMe.Load() && (p.fader.SampleFactor() == 0 || is.eof.Load()):
			is.Release()
			if _, err := p.nextSongLocked(true, false); err != nil {
				return written
			}
		case is.eof.Load():
			is.Release()
			p.notifySongFinishedLocked(is.song)
			if !p.cfg.NextSongOnEOF {
				p.stopLocked(nil)
				return written
			}
			if _, err := p.nextSongLocked(false, false); err != nil {
				return written
			}
		default:
			is.Release()
			if n == 0 {
				return written
			}
		}
	}
	return written
}

// work is the worker goroutine. In live mode it renders and writes to the
// sink; in pull mode rendering is driven by ReadOutStream and the worker
// only keeps the prefetch list fresh.
func (p *Player) work(live bool, done chan<- struct{}) {
	defer close(done)

	if live {
		p.runLive()
		return
	}
	p.runPull()
}

func (p *Player) runLive() {
	p.mu.Lock()
	buf := make([]int16, p.cfg.Quantum*p.cfg.Channels)
	p.mu.Unlock()

	for {
		sink, err := p.ensureSink()
		if err != nil {
			p.mu.Lock()
			p.log.Error("cannot open sink", "error", err)
			p.stopLocked(err)
			p.unlock()
			return
		}

		p.mu.Lock()
		if !p.playing {
			p.unlock()
			return
		}
		n := p.fillLocked(buf)
		flush := p.outOfSync && n > 0
		if flush {
			p.outOfSync = false
		}
		dirty := p.takePeeksDirtyLocked()
		p.unlock()

		if flush {
			if f, ok := sink.(Flusher); ok {
				if err := f.Flush(); err != nil {
					p.log.Warn("sink flush", "error", err)
				}
			}
		}
		if n > 0 {
			if err := sink.Write(buf[:n]); err != nil {
				p.log.Error("sink write", "error", err)
			}
		}
		if dirty || p.peeksDue() {
			p.refreshPeeks()
		}
		if n == 0 {
			select {
			case <-p.wake:
			case <-time.After(idleWait):
			}
		}
	}
}

func (p *Player) runPull() {
	for {
		p.mu.Lock()
		if !p.playing {
			p.unlock()
			return
		}
		dirty := p.takePeeksDirtyLocked()
		p.unlock()

		if dirty || p.peeksDue() {
			p.refreshPeeks()
		}
		select {
		case <-p.wake:
		case <-time.After(peekRetry):
		}
	}
}

func (p *Player) takePeeksDirtyLocked() bool {
	dirty := p.peeksDirty
	p.peeksDirty = false
	return dirty
}

// peeksDue reports whether the prefetch list is short of PeekDepth and
// the last refresh is at least peekRetry old.
func (p *Player) peeksDue() bool {
	p.mu.Lock()
	depth := p.cfg.PeekDepth
	due := p.peekQueue != nil && depth > 0 && p.cfg.NextSongOnEOF &&
		time.Since(p.lastPeek) >= peekRetry
	p.mu.Unlock()

	return due && len(p.streams.Peeked()) < depth
}

// refreshPeeks syncs the prefetch list with the peek queue. Failures are
// logged only.
func (p *Player) refreshPeeks() {
	p.mu.Lock()
	if p.peekQueue == nil || p.cfg.PeekDepth == 0 || !p.cfg.NextSongOnEOF || p.closed {
		p.mu.Unlock()
		return
	}
	p.lockQueue()
	// lockQueue may have dropped mu.
	pq, depth, closed := p.peekQueue, p.cfg.PeekDepth, p.closed
	var (
		songs []Song
		err   error
	)
	if pq != nil && depth > 0 && !closed {
		songs, err = pq.Peek(depth)
	}
	p.unlockQueue()
	p.lastPeek = time.Now()
	open := p.openerLocked()
	p.mu.Unlock()

	if pq == nil || depth == 0 || closed {
		return
	}
	if err != nil {
		p.log.Warn("peek queue", "error", err)
		return
	}
	if err := p.streams.PeekNext(songs, open); err != nil {
		p.log.Warn("prefetch failed", "error", err)
	}

	p.mu.Lock()
	closed = p.closed
	p.mu.Unlock()
	if closed {
		// Close ran while the list was being opened.
		p.streams.Clear()
	}
}

func (p *Player) ensureSink() (Sink, error) {
	p.mu.Lock()
	if s := p.sink; s != nil {
		p.mu.Unlock()
		return s, nil
	}
	open, format, device := p.openSink, p.formatLocked(), p.cfg.PreferredDevice
	p.mu.Unlock()

	if open == nil {
		return nil, ErrNoSink
	}
	s, err := open(format, device)
	if err != nil {
		return nil, fmt.Errorf("opening sink: %w", err)
	}
	if dn, ok := s.(DeviceNamer); ok && device != "" && dn.DeviceName() != device {
		p.log.Info("preferred device not used", "preferred", device, "actual", dn.DeviceName())
	}

	p.mu.Lock()
	p.sink = s
	p.mu.Unlock()
	return s, nil
}

func (p *Player) wakeWorker() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
