// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/samber/lo"
)

// Options configures a Player. Decoder is required; Sink is required only
// for soundcard output.
type Options struct {
	Config  Config
	Decoder Decoder
	Sink    SinkOpener
	Logger  *slog.Logger

	// Notifications run after the player lock is released, on the
	// goroutine that caused them, which may be the worker. They must not
	// call SetPlaying(false), ResetPlaying or Close synchronously since
	// those wait for the worker. Errors and panics are logged.
	OnSongChange         func(SongChange) error
	OnSongFinished       func(Song) error
	OnPlayingStateChange func(playing bool) error
}

// Player is the playback controller. All methods are safe for concurrent
// use.
type Player struct {
	mu sync.Mutex
	// queueBusy marks a queue transition in progress. It is only taken
	// with mu held, but a transition drops mu while opening a decoder.
	queueBusy atomic.Bool

	cfg      Config
	dec      Decoder
	openSink SinkOpener
	sink     Sink
	log      *slog.Logger

	onSongChange         func(SongChange) error
	onSongFinished       func(Song) error
	onPlayingStateChange func(bool) error

	queue     Queue
	peekQueue PeekQueue
	streams   InStreams
	fader     *Fader
	out       outputStage

	curSong    Song
	playing    bool
	outOfSync  bool
	peeksDirty bool
	lastPeek   time.Time
	closed     bool
	state      State
	err        error

	pending []func()
	wake    chan struct{}
	done    chan struct{}
}

// New returns a stopped player. A zero Options.Config means DefaultConfig.
func New(opts Options) (*Player, error) {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	cfg.Volume = lo.Clamp(cfg.Volume, 0, MaxVolume)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Decoder == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, ErrNoDecoder)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	p := &Player{
		cfg:                  cfg,
		dec:                  opts.Decoder,
		openSink:             opts.Sink,
		log:                  log,
		onSongChange:         opts.OnSongChange,
		onSongFinished:       opts.OnSongFinished,
		onPlayingStateChange: opts.OnPlayingStateChange,
		fader:                NewFader(cfg.FadeDuration),
		outOfSync:            true,
		wake:                 make(chan struct{}, 1),
	}
	p.out = outputStage{
		fader:        p.fader,
		clip:         SmoothClip{X1: cfg.SmoothClipX1, X2: cfg.SmoothClipX2},
		volume:       cfg.Volume,
		volumeAdjust: cfg.VolumeAdjust,
		channels:     cfg.Channels,
	}
	return p, nil
}

// unlock releases mu and then runs the notifications queued while it was
// held.
func (p *Player) unlock() {
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

func (p *Player) notifyLocked(name string, fn func() error) {
	p.pending = append(p.pending, func() { p.safeCall(name, fn) })
}

func (p *Player) safeCall(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("notification panicked", "callback", name, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		p.log.Error("notification failed", "callback", name, "error", err)
	}
}

func (p *Player) notifySongChangeLocked(ch SongChange) {
	if cb := p.onSongChange; cb != nil {
		p.notifyLocked("onSongChange", func() error { return cb(ch) })
	}
}

func (p *Player) notifySongFinishedLocked(song Song) {
	if cb := p.onSongFinished; cb != nil {
		p.notifyLocked("onSongFinished", func() error { return cb(song) })
	}
}

func (p *Player) notifyPlayingLocked(playing bool) {
	if cb := p.onPlayingStateChange; cb != nil {
		p.notifyLocked("onPlayingStateChange", func() error { return cb(playing) })
	}
}

// stopLocked leaves the playing state. err, when set, is kept for Err.
func (p *Player) stopLocked(err error) {
	if err != nil {
		p.err = err
	}
	p.state = Idle
	if p.playing {
		p.playing = false
		p.notifyPlayingLocked(false)
	}
	p.wakeWorker()
}

func (p *Player) formatLocked() audio.Format {
	return audio.Format{SampleRate: p.cfg.SampleRate, Channels: p.cfg.Channels}
}

func (p *Player) openerLocked() Opener {
	dec, format, log := p.dec, p.formatLocked(), p.log
	return func(song Song) (*InStream, error) {
		return openInStream(dec, song, format, log)
	}
}

func (p *Player) usableCurrent() bool {
	is := p.streams.Current()
	if is == nil {
		return false
	}
	defer is.Release()
	return !is.eof.Load()
}

// SetPlaying starts or stops playback. Starting without a usable current
// stream opens the next song first; ErrQueueExhausted or ErrNoQueue is
// returned when there is none. Stopping waits for the worker to reach a
// safe point.
func (p *Player) SetPlaying(playing bool) error {
	if playing {
		return p.start()
	}
	p.halt()
	return nil
}

func (p *Player) start() error {
	p.mu.Lock()
	for {
		if p.closed {
			p.unlock()
			return ErrClosed
		}
		if p.playing {
			p.unlock()
			return nil
		}
		if done := p.done; done != nil {
			p.mu.Unlock()
			<-done
			p.mu.Lock()
			if p.done == done {
				p.done = nil
			}
			continue
		}
		if !p.usableCurrent() {
			p.err = nil
			if _, err := p.nextSongLocked(false, false); err != nil {
				p.unlock()
				return err
			}
			continue
		}
		break
	}

	p.err = nil
	p.playing = true
	p.state = Playing
	if is := p.streams.Current(); is != nil {
		if is.skipMe.Load() {
			p.state = Fading
		}
		is.Release()
	}
	p.peeksDirty = true
	done := make(chan struct{})
	p.done = done
	p.notifyPlayingLocked(true)
	go p.work(p.cfg.SoundcardOutput, done)
	p.unlock()
	return nil
}

func (p *Player) halt() {
	p.mu.Lock()
	if p.playing {
		p.stopLocked(nil)
	}
	done := p.done
	p.unlock()

	if done != nil {
		<-done
	}
}

// Playing reports whether playback is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OutOfSync reports whether a skip or seek happened that the output has not
// caught up with yet.
func (p *Player) OutOfSync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outOfSync
}

// Err returns why playback last stopped on its own, e.g. ErrQueueExhausted.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// NextSong skips to the next song, fading out first when the current one is
// audible. It reports whether a new stream is current or a fade-out skip is
// pending.
func (p *Player) NextSong() (bool, error) {
	p.mu.Lock()
	if p.closed {
		p.unlock()
		return false, ErrClosed
	}
	ok, err := p.nextSongLocked(true, true)
	p.unlock()
	return ok, err
}

// Seek moves the current stream to pos seconds, or by pos seconds when
// relative. Targets before the start clamp to 0. On failure the position
// is unchanged and the error wraps ErrSeek.
func (p *Player) Seek(pos float64, relative bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	is := p.streams.Current()
	if is == nil {
		return ErrNoStream
	}
	defer is.Release()

	target := pos
	if relative {
		target += is.Position()
	}
	target = max(target, 0)
	if err := is.seek(target); err != nil {
		is.log.Warn("seek failed", "target", target, "error", err)
		return fmt.Errorf("%w: %w", ErrSeek, err)
	}
	p.outOfSync = true
	return nil
}

func (p *Player) SeekAbs(pos float64) error { return p.Seek(pos, false) }
func (p *Player) SeekRel(pos float64) error { return p.Seek(pos, true) }

// ReadOutStream renders into dst in pull mode and returns the number of
// samples written. Only whole frames are written; a short count means
// playback stopped.
func (p *Player) ReadOutStream(dst []int16) (int, error) {
	p.mu.Lock()
	switch {
	case p.closed:
		p.unlock()
		return 0, ErrClosed
	case p.cfg.SoundcardOutput:
		p.unlock()
		return 0, ErrSoundcardOutput
	case !p.playing:
		p.unlock()
		return 0, ErrNotPlaying
	}

	dst = dst[:len(dst)-len(dst)%p.cfg.Channels]
	n := p.fillLocked(dst)
	if n > 0 {
		p.outOfSync = false
	}
	p.unlock()
	return n, nil
}

// ReloadPeekStreams syncs the prefetch list with the peek queue right away.
// Errors are logged, not returned.
func (p *Player) ReloadPeekStreams() {
	p.refreshPeeks()
}

// ResetPlaying stops playback and drops every stream and the current song.
func (p *Player) ResetPlaying() {
	p.halt()

	p.mu.Lock()
	p.lockQueue()
	p.curSong = nil
	p.outOfSync = true
	p.state = Idle
	p.mu.Unlock()

	p.streams.Clear()
	p.unlockQueue()
}

// Close stops playback and releases every stream and the sink.
func (p *Player) Close() error {
	p.halt()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	// Wait out a transition that is opening a song right now, so nothing
	// it opens outlives the Clear below.
	p.lockQueue()
	sink := p.sink
	p.sink = nil
	p.mu.Unlock()

	p.streams.Clear()
	p.unlockQueue()
	if sink != nil {
		return sink.Close()
	}
	return nil
}
