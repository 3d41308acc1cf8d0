// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audplay/player"
)

// configFlags are the player settings that can be given on the command
// line. They override the config file.
type configFlags struct {
	path     string
	rate     int
	channels int
	volume   float64
	fade     time.Duration
	peek     int
	device   string
	noGain   bool
}

func (c *configFlags) register(fs *pflag.FlagSet) {
	def := player.DefaultConfig()
	fs.StringVarP(&c.path, "config", "c", "", "YAML file with player settings")
	fs.IntVar(&c.rate, "rate", def.SampleRate, "output sample rate in Hz")
	fs.IntVar(&c.channels, "channels", def.Channels, "output channel count")
	fs.Float64Var(&c.volume, "volume", def.Volume, "linear volume, 0 to 5")
	fs.DurationVar(&c.fade, "fade", def.FadeDuration, "fade out length when skipping")
	fs.IntVar(&c.peek, "peek", def.PeekDepth, "songs to open ahead of the current one")
	fs.StringVar(&c.device, "device", def.PreferredDevice, "preferred output device")
	fs.BoolVar(&c.noGain, "no-volume-adjust", false, "ignore volume and replay gain")
}

// load reads the config file, if any, and applies the flags that were set
// explicitly.
func (c *configFlags) load(fs *pflag.FlagSet) (player.Config, error) {
	cfg := player.DefaultConfig()
	if c.path != "" {
		data, err := os.ReadFile(c.path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = parseConfig(data); err != nil {
			return cfg, err
		}
	}

	if fs.Changed("rate") {
		cfg.SampleRate = c.rate
	}
	if fs.Changed("channels") {
		cfg.Channels = c.channels
	}
	if fs.Changed("volume") {
		cfg.Volume = c.volume
	}
	if fs.Changed("fade") {
		cfg.FadeDuration = c.fade
	}
	if fs.Changed("peek") {
		cfg.PeekDepth = c.peek
	}
	if fs.Changed("device") {
		cfg.PreferredDevice = c.device
	}
	if c.noGain {
		cfg.VolumeAdjust = false
	}
	return cfg, cfg.Validate()
}

// parseConfig decodes YAML over the defaults. Unknown keys are errors.
func parseConfig(data []byte) (player.Config, error) {
	cfg := player.DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
