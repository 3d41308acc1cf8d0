// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/ik5/audplay/player"
)

func TestSliceQueue(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue(FileSong{Path: "a"}, FileSong{Path: "b"})
	q.Append(FileSong{Path: "c"})

	peek, err := q.Peek(2)
	if err != nil || len(peek) != 2 || peek[0].Key() != "a" {
		t.Fatalf("Peek(2) = %v, %v", peek, err)
	}
	if all, _ := q.Peek(10); len(all) != 3 {
		t.Errorf("Peek(10) returned %d songs, want 3", len(all))
	}

	var got []string
	for {
		s, err := q.Next()
		if errors.Is(err, player.ErrEndOfQueue) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, s.Key())
	}
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Next() order = %v", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestSliceQueue_PeekDoesNotAlias(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue(FileSong{Path: "a"}, FileSong{Path: "b"})
	peek, _ := q.Peek(2)
	peek[0] = FileSong{Path: "changed"}
	if keys := q.Keys(); !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("Keys() = %v after editing a peek result", keys)
	}
}

func TestDirQueue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWAV(t, dir, "02.wav", 8000, 1, 10, 0)
	writeWAV(t, dir, "01.wav", 8000, 1, 10, 0)
	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("jpg"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0o700); err != nil {
		t.Fatal(err)
	}

	q, err := NewDirQueue(dir, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewDirQueue() error = %v", err)
	}
	want := []string{filepath.Join(dir, "01.wav"), filepath.Join(dir, "02.wav")}
	if keys := q.Keys(); !slices.Equal(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}

	if _, err := NewDirQueue(filepath.Join(dir, "missing"), NewRegistry(), nil); err == nil {
		t.Error("NewDirQueue() on a missing directory succeeded")
	}
}

func TestDirQueue_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	q, err := NewDirQueue(dir, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	added := make(chan player.Song, 4)
	done := make(chan error, 1)
	go func() {
		done <- q.Watch(ctx, func(s player.Song) {
			select {
			case added <- s:
			default:
			}
		})
	}()

	// The watcher may not be registered yet; keep creating files until one
	// is reported.
	var song player.Song
	deadline := time.After(5 * time.Second)
	for i := 0; song == nil; i++ {
		writeWAV(t, dir, "new"+string(rune('a'+i%26))+".wav", 8000, 1, 10, 0)
		select {
		case song = <-added:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no file reported by Watch")
		}
	}
	if filepath.Ext(song.Key()) != ".wav" {
		t.Errorf("added %q", song.Key())
	}
	if q.Len() == 0 {
		t.Error("watched file was not queued")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "disc2"), 0o700); err != nil {
		t.Fatal(err)
	}
	writeWAV(t, dir, "a.wav", 8000, 1, 10, 0)
	writeWAV(t, filepath.Join(dir, "disc2"), "b.wav", 8000, 1, 10, 0)
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	songs, err := Walk(dir, NewRegistry())
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("Walk() found %d songs, want 2", len(songs))
	}
	if songs[0].Key() != filepath.Join(dir, "a.wav") {
		t.Errorf("first song = %s", songs[0].Key())
	}
}
