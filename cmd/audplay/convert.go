// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/player"
)

func convertCmd() *cobra.Command {
	var rate, channels int
	cmd := &cobra.Command{
		Use:   "convert input output.wav",
		Short: "Decode any supported file into a 16-bit WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(args[0], args[1], audio.Format{SampleRate: rate, Channels: channels})
		},
	}
	cmd.Flags().IntVar(&rate, "rate", 8000, "output sample rate in Hz")
	cmd.Flags().IntVar(&channels, "channels", 1, "output channel count")
	return cmd
}

func convert(inPath, outPath string, format audio.Format) error {
	cfg := player.DefaultConfig()
	cfg.SampleRate, cfg.Channels = format.SampleRate, format.Channels
	if err := cfg.Validate(); err != nil {
		return err
	}

	dec, err := audplay.NewRegistry().ForPath(inPath)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	src, err := dec.Decode(audio.NewSeekGuard(in))
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	defer src.Close()

	pcm16, err := audplay.ReadAll16(src, format, 4096)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := wav.WriteWAV16(out, format.SampleRate, format.Channels, pcm16); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func audioFormat(cfg player.Config) audio.Format {
	return audio.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels}
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
