// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

func probeCmd() *cobra.Command {
	var showTags bool
	cmd := &cobra.Command{
		Use:   "probe file...",
		Short: "Show format, length and tags of audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := audplay.NewRegistry()
			infos := make([]probeInfo, 0, len(args))
			for _, path := range args {
				infos = append(infos, probe(reg, path))
			}
			renderProbe(cmd.OutOrStdout(), infos, showTags, termWidth())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showTags, "tags", "t", false, "list every tag")
	return cmd
}

type probeInfo struct {
	path     string
	format   audio.Format
	frames   int64
	metadata map[string]string
	err      error
}

func probe(reg *audio.Registry, path string) probeInfo {
	info := probeInfo{path: path, frames: -1}

	dec, err := reg.ForPath(path)
	if err != nil {
		info.err = err
		return info
	}
	f, err := os.Open(path)
	if err != nil {
		info.err = err
		return info
	}
	defer f.Close()

	src, err := dec.Decode(audio.NewSeekGuard(f))
	if err != nil {
		info.err = err
		return info
	}
	defer src.Close()

	info.format = audio.FormatOf(src)
	info.frames = audio.LenFrames(src)
	info.metadata = audio.MetadataOf(src)
	return info
}

func (i probeInfo) length() string {
	if i.frames < 0 || i.format.SampleRate == 0 {
		return "unknown"
	}
	return formatSeconds(float64(i.frames) / float64(i.format.SampleRate))
}

func (i probeInfo) gain() string {
	db, ok := utils.ParseDB(i.metadata["replaygain_track_gain"])
	if !ok {
		return ""
	}
	return fmt.Sprintf("%+.2f dB (x%.3f)", db, utils.DBToFactor(db))
}

func renderProbe(w io.Writer, infos []probeInfo, showTags bool, width int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(width)

	t.AppendHeader(table.Row{"File", "Rate", "Ch", "Length", "Title", "Artist", "Replay gain"})
	for _, i := range infos {
		name := filepath.Base(i.path)
		if i.err != nil {
			t.AppendRow(table.Row{name, "", "", "", "error: " + i.err.Error()})
			continue
		}
		t.AppendRow(table.Row{
			name,
			i.format.SampleRate,
			i.format.Channels,
			i.length(),
			i.metadata["title"],
			i.metadata["artist"],
			i.gain(),
		})
		if showTags {
			for _, k := range sortedKeys(i.metadata) {
				t.AppendRow(table.Row{"", "", "", "", "  " + k + "=" + strings.TrimSpace(i.metadata[k])})
			}
		}
	}
	t.Render()
}

func termWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 120
}
