// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/player"
)

type playFlags struct {
	cfg     configFlags
	out     string
	watch   bool
	discard bool
}

func playCmd(g *globalFlags) *cobra.Command {
	f := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play [file or directory]...",
		Short: "Play files back to back",
		Long: `Play audio files gaplessly in the order given. Directories are
expanded recursively in name order.

Keys while playing:
  space        pause / resume
  enter, n     next song
  left, right  seek 10s back / forward
  +, -         volume up / down
  q            quit

With --out the songs are rendered into a WAV file as fast as possible
instead of being played.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closer, err := g.logger()
			if err != nil {
				return err
			}
			defer closer.Close()

			cfg, err := f.cfg.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), f, cfg, args, log)
		},
	}
	f.cfg.register(cmd.Flags())
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "render into this WAV file instead of the sound device")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "keep a single directory argument open and queue new files")
	cmd.Flags().BoolVar(&f.discard, "discard", false, "play in real time without a sound device")
	return cmd
}

// queueFor builds the queue from the arguments.
func queueFor(ctx context.Context, args []string, watch bool, log *slog.Logger) (*audplay.SliceQueue, error) {
	reg := audplay.NewRegistry()

	if watch {
		if len(args) != 1 {
			return nil, errors.New("--watch takes exactly one directory")
		}
		dq, err := audplay.NewDirQueue(args[0], reg, log)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := dq.Watch(ctx, nil); err != nil {
				log.Error("directory watch stopped", "error", err)
			}
		}()
		return dq.SliceQueue, nil
	}

	q := audplay.NewSliceQueue()
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if !info.IsDir() {
			q.Append(audplay.FileSong{Path: arg})
			continue
		}
		songs, err := audplay.Walk(arg, reg)
		if err != nil {
			return nil, err
		}
		q.Append(songs...)
	}
	if q.Len() == 0 {
		return nil, errors.New("nothing to play")
	}
	return q, nil
}

func runPlay(ctx context.Context, f *playFlags, cfg player.Config, args []string, log *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, err := queueFor(ctx, args, f.watch, log)
	if err != nil {
		return err
	}

	cfg.SoundcardOutput = f.out == ""
	var sink player.SinkOpener = output.OpenOto
	if f.discard {
		sink = output.DiscardOpener(true)
	}

	changes := make(chan player.SongChange, 8)
	p, err := player.New(player.Options{
		Config:  cfg,
		Decoder: audplay.NewDecoder(),
		Sink:    sink,
		Logger:  log,
		OnSongChange: func(ch player.SongChange) error {
			select {
			case changes <- ch:
			default:
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	defer p.Close()
	p.SetQueue(q)
	p.SetPeekQueue(q)

	if err := p.SetPlaying(true); err != nil {
		return err
	}

	if f.out != "" {
		return render(ctx, p, cfg, f.out)
	}
	return console(ctx, p, changes, f.watch)
}

// render pulls the whole queue into a WAV file.
func render(ctx context.Context, p *player.Player, cfg player.Config, path string) error {
	out, err := output.CreateWAVFile(path, audioFormat(cfg))
	if err != nil {
		return err
	}

	buf := make([]int16, cfg.Quantum*cfg.Channels)
	for ctx.Err() == nil {
		n, err := p.ReadOutStream(buf)
		if errors.Is(err, player.ErrNotPlaying) {
			break
		}
		if err != nil {
			out.Close()
			return err
		}
		if err := out.Write(buf[:n]); err != nil {
			out.Close()
			return err
		}
		if n < len(buf) {
			break
		}
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s)\n", path, formatSeconds(float64(out.Frames())/float64(cfg.SampleRate)))
	if err := p.Err(); err != nil && !errors.Is(err, player.ErrQueueExhausted) {
		return err
	}
	return nil
}

// console drives playback from the keyboard and shows a status line.
// Without a terminal it just waits for the queue to run out.
func console(ctx context.Context, p *player.Player, changes <-chan player.SongChange, watch bool) error {
	fd := int(os.Stdin.Fd())
	interactive := term.IsTerminal(fd)

	keys := make(chan []byte)
	if interactive {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer term.Restore(fd, old)
		go readKeys(os.Stdin, keys)
	}
	defer fmt.Print("\r\n")

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	paused := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch := <-changes:
			if ch.ErrorOnOpening {
				fmt.Printf("\r\033[Kcannot play %s\r\n", ch.New.Key())
			}
		case k := <-keys:
			switch action(k) {
			case actQuit:
				return nil
			case actPause:
				paused = !paused
				if err := p.SetPlaying(!paused); err != nil {
					return err
				}
			case actNext:
				if _, err := p.NextSong(); err != nil && !errors.Is(err, player.ErrQueueExhausted) {
					return err
				}
			case actBack:
				p.SeekRel(-10)
			case actForward:
				p.SeekRel(10)
			case actLouder:
				p.SetVolume(p.Volume() + 0.1)
			case actQuieter:
				p.SetVolume(p.Volume() - 0.1)
			}
		case <-ticker.C:
			if !paused && !p.Playing() {
				if !watch || !errors.Is(p.Err(), player.ErrQueueExhausted) {
					return ignoreExhausted(p.Err())
				}
				// A watched directory may fill up again.
				if err := p.SetPlaying(true); err != nil && !errors.Is(err, player.ErrQueueExhausted) {
					return err
				}
			}
			if interactive {
				fmt.Print("\r" + statusLine(p, paused) + "\033[K")
			}
		}
	}
}

func ignoreExhausted(err error) error {
	if errors.Is(err, player.ErrQueueExhausted) {
		return nil
	}
	return err
}

func readKeys(r io.Reader, keys chan<- []byte) {
	buf := make([]byte, 8)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			keys <- append([]byte(nil), buf[:n]...)
		}
	}
}

type keyAction int

const (
	actNone keyAction = iota
	actQuit
	actPause
	actNext
	actBack
	actForward
	actLouder
	actQuieter
)

// action maps a raw key sequence to what it does.
func action(k []byte) keyAction {
	switch string(k) {
	case "q", "Q", "\x03":
		return actQuit
	case " ":
		return actPause
	case "\r", "\n", "n":
		return actNext
	case "\x1b[D":
		return actBack
	case "\x1b[C":
		return actForward
	case "+", "=":
		return actLouder
	case "-":
		return actQuieter
	}
	return actNone
}

func statusLine(p *player.Player, paused bool) string {
	icon := "▶"
	if paused {
		icon = "⏸"
	}
	title := "-"
	if s := p.CurrentSong(); s != nil {
		title = filepath.Base(s.Key())
		if t := p.Metadata()["title"]; t != "" {
			title = t
		}
	}
	pos, _ := p.Position()
	length := "--:--"
	if l, ok := p.Length(); ok {
		length = formatSeconds(l)
	}
	return fmt.Sprintf("%s %s  %s / %s  vol %.0f%%", icon, title, formatSeconds(pos), length, p.Volume()*100)
}

// formatSeconds renders s as m:ss, or h:mm:ss from an hour on.
func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(time.Second)
	h, m, sec := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
