// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/player"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(player.Config) bool
	}{
		{name: "empty keeps defaults", yaml: "", check: func(c player.Config) bool { return c == player.DefaultConfig() }},
		{name: "fields", yaml: "sample_rate: 48000\nfade_duration: 1s\nsoundcard_output: false\n", check: func(c player.Config) bool {
			return c.SampleRate == 48000 && c.FadeDuration == time.Second && !c.SoundcardOutput && c.Channels == 2
		}},
		{name: "unknown key", yaml: "samplerate: 1\n", wantErr: true},
		{name: "bad type", yaml: "channels: many\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := parseConfig([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("parseConfig() = %+v", cfg)
			}
		})
	}
}

func TestConfigFlags_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audplay.yaml")
	if err := os.WriteFile(path, []byte("sample_rate: 22050\nvolume: 0.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var c configFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.register(fs)
	if err := fs.Parse([]string{"--config", path, "--volume", "2", "--no-volume-adjust"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := c.load(fs)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want the file's 22050", cfg.SampleRate)
	}
	if cfg.Volume != 2 {
		t.Errorf("Volume = %v, want the flag's 2", cfg.Volume)
	}
	if cfg.VolumeAdjust {
		t.Error("VolumeAdjust = true with --no-volume-adjust")
	}
}

func TestConfigFlags_LoadInvalid(t *testing.T) {
	t.Parallel()

	var c configFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.register(fs)
	if err := fs.Parse([]string{"--channels", "0"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.load(fs); !errors.Is(err, player.ErrChannels) {
		t.Errorf("load() error = %v, want ErrChannels", err)
	}
}

func TestAction(t *testing.T) {
	t.Parallel()

	tests := map[string]keyAction{
		"q": actQuit, "\x03": actQuit, " ": actPause, "\r": actNext, "n": actNext,
		"\x1b[D": actBack, "\x1b[C": actForward, "+": actLouder, "-": actQuieter, "x": actNone,
	}
	for k, want := range tests {
		if got := action([]byte(k)); got != want {
			t.Errorf("action(%q) = %v, want %v", k, got, want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{0: "0:00", 9.6: "0:10", 75: "1:15", 3725: "1:02:05"}
	for s, want := range tests {
		if got := formatSeconds(s); got != want {
			t.Errorf("formatSeconds(%v) = %q, want %q", s, got, want)
		}
	}
}

func writeTestWAV(t *testing.T, path string, rate, channels, frames int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := wav.WriteWAV16(f, rate, channels, make([]int16, frames*channels)); err != nil {
		t.Fatal(err)
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "tone.wav")
	writeTestWAV(t, good, 8000, 2, 16000)

	infos := []probeInfo{
		probe(testRegistry(), good),
		probe(testRegistry(), filepath.Join(dir, "readme.txt")),
	}
	if infos[0].err != nil {
		t.Fatalf("probe() error = %v", infos[0].err)
	}
	if infos[0].format != (audio.Format{SampleRate: 8000, Channels: 2}) || infos[0].length() != "0:02" {
		t.Errorf("probe() = %+v, length %s", infos[0], infos[0].length())
	}
	if !errors.Is(infos[1].err, audio.ErrUnknownFormat) {
		t.Errorf("probe(readme.txt) error = %v", infos[1].err)
	}

	var out bytes.Buffer
	renderProbe(&out, infos, true, 200)
	for _, want := range []string{"tone.wav", "8000", "0:02", "readme.txt", "error"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table does not mention %q:\n%s", want, out.String())
		}
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	writeTestWAV(t, in, 16000, 2, 16000)

	if err := convert(in, out, audio.Format{SampleRate: 8000, Channels: 1}); err != nil {
		t.Fatalf("convert() error = %v", err)
	}
	info := probe(testRegistry(), out)
	if info.err != nil {
		t.Fatal(info.err)
	}
	if info.format != (audio.Format{SampleRate: 8000, Channels: 1}) {
		t.Errorf("output format = %+v", info.format)
	}
	if info.frames < 7900 || info.frames > 8000 {
		t.Errorf("output frames = %d, want about 8000", info.frames)
	}

	if err := convert(in, out, audio.Format{SampleRate: 8000, Channels: 0}); !errors.Is(err, player.ErrChannels) {
		t.Errorf("convert() to 0 channels error = %v", err)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestWAV(t, filepath.Join(dir, "a.wav"), 8000, 1, 800)
	writeTestWAV(t, filepath.Join(dir, "b.wav"), 8000, 1, 400)
	out := filepath.Join(dir, "mix", "all.wav")
	if err := os.Mkdir(filepath.Dir(out), 0o700); err != nil {
		t.Fatal(err)
	}

	cfg := player.DefaultConfig()
	cfg.SampleRate, cfg.Channels = 8000, 2
	f := &playFlags{out: out}
	if err := runPlay(t.Context(), f, cfg, []string{dir}, discardLogger()); err != nil {
		t.Fatalf("runPlay() error = %v", err)
	}

	info := probe(testRegistry(), out)
	if info.err != nil {
		t.Fatal(info.err)
	}
	if info.frames != 1200 || info.format.Channels != 2 {
		t.Errorf("rendered %d frames x %d channels, want 1200 x 2", info.frames, info.format.Channels)
	}
}

func TestQueueFor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := queueFor(t.Context(), []string{dir}, false, discardLogger()); err == nil {
		t.Error("queueFor() on an empty directory succeeded")
	}
	if _, err := queueFor(t.Context(), []string{dir, dir}, true, discardLogger()); err == nil {
		t.Error("queueFor() watching two directories succeeded")
	}
	if _, err := queueFor(t.Context(), []string{filepath.Join(dir, "missing.wav")}, false, discardLogger()); err == nil {
		t.Error("queueFor() with a missing file succeeded")
	}
}
