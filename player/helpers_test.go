// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/internal/audiotest"
)

var errOpen = errors.New("cannot decode")

type testSong string

func (s testSong) Key() string { return string(s) }

type gainSong struct {
	testSong
	db float64
}

func (s gainSong) Gain() float64 { return s.db }

// sliceQueue hands out songs in order and peeks without consuming.
type sliceQueue struct {
	mu    sync.Mutex
	songs []Song
}

func newQueue(keys ...string) *sliceQueue {
	q := &sliceQueue{}
	for _, k := range keys {
		q.songs = append(q.songs, testSong(k))
	}
	return q
}

func (q *sliceQueue) Next() (Song, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.songs) == 0 {
		return nil, ErrEndOfQueue
	}
	s := q.songs[0]
	q.songs = q.songs[1:]
	return s, nil
}

func (q *sliceQueue) Peek(n int) ([]Song, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Song(nil), q.songs[:min(n, len(q.songs))]...), nil
}

func (q *sliceQueue) add(keys ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, k := range keys {
		q.songs = append(q.songs, testSong(k))
	}
}

// fakeDecoder opens constant mock sources of a fixed length per song.
type fakeDecoder struct {
	mu     sync.Mutex
	frames int
	value  float32
	fail   map[string]bool
	opened []string
	srcs   []*audiotest.MockSource
}

func newDecoder(frames int) *fakeDecoder {
	return &fakeDecoder{frames: frames, value: 0.5, fail: map[string]bool{}}
}

func (d *fakeDecoder) Open(song Song, format audio.Format) (audio.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = append(d.opened, song.Key())
	if d.fail[song.Key()] {
		return nil, errOpen
	}
	src := audiotest.NewConstantSource(format.SampleRate, format.Channels, d.frames, d.value)
	d.srcs = append(d.srcs, src)
	return src, nil
}

func (d *fakeDecoder) setFail(key string, fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[key] = fail
}

func (d *fakeDecoder) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

func (d *fakeDecoder) allClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.srcs {
		if !s.Closed() {
			return false
		}
	}
	return true
}

// gatedDecoder holds the first Open of one song until release is closed.
type gatedDecoder struct {
	*fakeDecoder
	key     string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedDecoder(frames int, key string) *gatedDecoder {
	return &gatedDecoder{
		fakeDecoder: newDecoder(frames),
		key:         key,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (d *gatedDecoder) Open(song Song, format audio.Format) (audio.Source, error) {
	if song.Key() == d.key {
		d.once.Do(func() {
			close(d.entered)
			<-d.release
		})
	}
	return d.fakeDecoder.Open(song, format)
}

// recorder collects notifications.
type recorder struct {
	mu       sync.Mutex
	changes  []SongChange
	finished []string
	states   []bool
}

func (r *recorder) songChange(ch SongChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, ch)
	return nil
}

func (r *recorder) songFinished(s Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, s.Key())
	return nil
}

func (r *recorder) playingState(playing bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, playing)
	return nil
}

func (r *recorder) Changes() []SongChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SongChange(nil), r.changes...)
}

func (r *recorder) Finished() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.finished...)
}

func keyOf(s Song) string {
	if s == nil {
		return ""
	}
	return s.Key()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pullConfig is a small mono configuration for pull mode tests.
func pullConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = 1000
	cfg.Channels = 1
	cfg.Volume = 1
	cfg.SoundcardOutput = false
	cfg.FadeDuration = 10 * time.Millisecond
	cfg.PeekDepth = 0
	cfg.Quantum = 16
	return cfg
}

func newTestPlayer(t *testing.T, cfg Config, dec Decoder, q *sliceQueue, rec *recorder) *Player {
	t.Helper()

	opts := Options{Config: cfg, Decoder: dec, Logger: discardLogger()}
	if rec != nil {
		opts.OnSongChange = rec.songChange
		opts.OnSongFinished = rec.songFinished
		opts.OnPlayingStateChange = rec.playingState
	}
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if q != nil {
		p.SetQueue(q)
		p.SetPeekQueue(q)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// captureSink records everything written in live mode.
type captureSink struct {
	mu      sync.Mutex
	samples []int16
	flushes int
	closed  bool
	device  string
}

func (s *captureSink) Write(samples []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, samples...)
	return nil
}

func (s *captureSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *captureSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) DeviceName() string { return s.device }

func (s *captureSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func formatFor(rate, channels int) audio.Format {
	return audio.Format{SampleRate: rate, Channels: channels}
}

// sourceDecoder hands out one prepared source.
type sourceDecoder struct{ src audio.Source }

func (d sourceDecoder) Open(Song, audio.Format) (audio.Source, error) { return d.src, nil }
