// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ik5/audplay/internal/audiotest"
)

type stubDecoder struct{ name string }

func (d stubDecoder) Decode(r io.Reader) (Source, error) {
	return audiotest.NewSilentSource(8000, 1, 10), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("wav", stubDecoder{name: "wav"})

	tests := []struct {
		name   string
		key    string
		wantOK bool
	}{
		{name: "exact key", key: "wav", wantOK: true},
		{name: "upper case", key: "WAV", wantOK: true},
		{name: "file extension", key: ".wav", wantOK: true},
		{name: "missing", key: "mp3", wantOK: false},
		{name: "empty", key: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, ok := reg.Get(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if ok && d.(stubDecoder).name != "wav" {
				t.Errorf("Get(%q) returned %v", tt.key, d)
			}
		})
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("ogg", stubDecoder{name: "ogg"})

	if _, err := reg.ForPath("/music/Track.OGG"); err != nil {
		t.Errorf("ForPath() error = %v, want nil", err)
	}

	_, err := reg.ForPath("/music/track.flac")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ForPath() error = %v, want ErrUnknownFormat", err)
	}

	_, err = reg.ForPath("/music/noext")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ForPath() without extension error = %v, want ErrUnknownFormat", err)
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, f := range []string{"ogg", ".MP3", "wav"} {
		reg.Register(f, stubDecoder{name: f})
	}

	got := reg.Formats()
	want := []string{"mp3", "ogg", "wav"}
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register(string(rune('a'+i)), stubDecoder{})
		}()
		go func() {
			defer wg.Done()
			reg.Get(string(rune('a' + i)))
		}()
	}
	wg.Wait()

	if n := len(reg.Formats()); n != 10 {
		t.Errorf("Formats() has %d entries, want 10", n)
	}
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	got := FormatOf(audiotest.NewSilentSource(22050, 2, 1))
	if got != (Format{SampleRate: 22050, Channels: 2}) {
		t.Errorf("FormatOf() = %+v", got)
	}
}

func TestIntsToFloats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		in       int
		want     float32
	}{
		{name: "16-bit half", bitDepth: 16, in: 16384, want: 0.5},
		{name: "16-bit min", bitDepth: 16, in: -32768, want: -1},
		{name: "24-bit quarter", bitDepth: 24, in: 2097152, want: 0.25},
		{name: "32-bit half", bitDepth: 32, in: 1073741824, want: 0.5},
		{name: "8-bit", bitDepth: 8, in: 64, want: 0.5},
		{name: "unknown depth falls back to 16-bit", bitDepth: 12, in: 16384, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dst := make([]float32, 1)
			if n := IntsToFloats(dst, []int{tt.in}, tt.bitDepth); n != 1 {
				t.Fatalf("IntsToFloats() n = %d, want 1", n)
			}
			if dst[0] != tt.want {
				t.Errorf("IntsToFloats() = %v, want %v", dst[0], tt.want)
			}
		})
	}
}

func TestSkipFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		total  int
		skip   int64
		want   int64
		nextAt float32
	}{
		{name: "within stream", total: 100, skip: 30, want: 30, nextAt: 30},
		{name: "zero", total: 100, skip: 0, want: 0, nextAt: 0},
		{name: "past end", total: 10, skip: 50, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewRampSource(8000, 2, tt.total)
			got, err := SkipFrames(src, tt.skip)
			if err != nil {
				t.Fatalf("SkipFrames() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("SkipFrames() = %d, want %d", got, tt.want)
			}
			if tt.want == int64(tt.total) {
				return
			}
			buf := make([]float32, 2)
			src.ReadSamples(buf)
			if buf[0] != tt.nextAt {
				t.Errorf("next frame = %v, want %v", buf[0], tt.nextAt)
			}
		})
	}
}

func TestSkipFrames_Error(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 1, 100).FailAt(20)
	if _, err := SkipFrames(src, 50); !errors.Is(err, audiotest.ErrMockRead) {
		t.Errorf("SkipFrames() error = %v, want ErrMockRead", err)
	}
}
