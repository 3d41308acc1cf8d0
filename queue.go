// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/player"
)

// SliceQueue is an in-memory queue. It implements player.Queue and
// player.PeekQueue and is safe for concurrent use.
type SliceQueue struct {
	mu    sync.Mutex
	songs []player.Song
}

func NewSliceQueue(songs ...player.Song) *SliceQueue {
	return &SliceQueue{songs: slices.Clone(songs)}
}

func (q *SliceQueue) Next() (player.Song, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.songs) == 0 {
		return nil, player.ErrEndOfQueue
	}
	s := q.songs[0]
	q.songs = q.songs[1:]
	return s, nil
}

func (q *SliceQueue) Peek(n int) ([]player.Song, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return slices.Clone(q.songs[:min(n, len(q.songs))]), nil
}

// Append adds songs to the end of the queue.
func (q *SliceQueue) Append(songs ...player.Song) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.songs = append(q.songs, songs...)
}

func (q *SliceQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.songs)
}

// Keys lists the keys of the queued songs in order.
func (q *SliceQueue) Keys() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return lo.Map(q.songs, func(s player.Song, _ int) string { return s.Key() })
}

// DirQueue queues the playable files of a directory in name order. With
// Watch, files created later are appended as they appear.
type DirQueue struct {
	*SliceQueue

	dir  string
	reg  *audio.Registry
	log  *slog.Logger
	seen map[string]bool
}

// NewDirQueue scans dir. Files are playable when reg has a decoder for
// their extension.
func NewDirQueue(dir string, reg *audio.Registry, log *slog.Logger) (*DirQueue, error) {
	if log == nil {
		log = slog.Default()
	}
	q := &DirQueue{
		SliceQueue: NewSliceQueue(),
		dir:        dir,
		reg:        reg,
		log:        log,
		seen:       map[string]bool{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			q.add(filepath.Join(dir, e.Name()))
		}
	}
	return q, nil
}

// add queues path once when it is playable.
func (q *DirQueue) add(path string) bool {
	if q.seen[path] {
		return false
	}
	if _, err := q.reg.ForPath(path); err != nil {
		return false
	}
	q.seen[path] = true
	q.Append(FileSong{Path: path})
	return true
}

// Watch appends files created in the directory until ctx is done. onAdd,
// when set, is called for each appended song.
func (q *DirQueue) Watch(ctx context.Context, onAdd func(player.Song)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(q.dir); err != nil {
		return fmt.Errorf("watching %s: %w", q.dir, err)
	}
	q.log.Info("watching directory", "dir", q.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if info, err := os.Stat(ev.Name); err != nil || !info.Mode().IsRegular() {
				continue
			}
			if q.add(ev.Name) {
				q.log.Info("queued new file", "path", ev.Name)
				if onAdd != nil {
					onAdd(FileSong{Path: ev.Name})
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			q.log.Warn("watch error", "error", err)
		}
	}
}

// Walk returns the playable files under root in lexical order.
func Walk(root string, reg *audio.Registry) ([]player.Song, error) {
	var songs []player.Song
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			if _, err := reg.ForPath(path); err == nil {
				songs = append(songs, FileSong{Path: path})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return songs, nil
}
