// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	MinSampleRate = 1000
	MaxSampleRate = 768000
	MaxChannels   = 8
	MaxVolume     = 5.0
	MaxPeekDepth  = 16
	MinQuantum    = 16
	MaxQuantum    = 1 << 16
)

// Config holds every tunable of a Player. Zero values are not meaningful;
// start from DefaultConfig.
type Config struct {
	SampleRate      int           `yaml:"sample_rate"`
	Channels        int           `yaml:"channels"`
	Volume          float64       `yaml:"volume"`
	VolumeAdjust    bool          `yaml:"volume_adjust"`
	SmoothClipX1    float64       `yaml:"smooth_clip_x1"`
	SmoothClipX2    float64       `yaml:"smooth_clip_x2"`
	SoundcardOutput bool          `yaml:"soundcard_output"`
	NextSongOnEOF   bool          `yaml:"next_song_on_eof"`
	PreferredDevice string        `yaml:"preferred_device"`
	FadeDuration    time.Duration `yaml:"fade_duration"`
	PeekDepth       int           `yaml:"peek_depth"`
	// Quantum is the number of frames rendered per worker iteration.
	Quantum int `yaml:"quantum"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		Channels:        2,
		Volume:          0.9,
		VolumeAdjust:    true,
		SmoothClipX1:    0.95,
		SmoothClipX2:    10,
		SoundcardOutput: true,
		NextSongOnEOF:   true,
		FadeDuration:    100 * time.Millisecond,
		PeekDepth:       2,
		Quantum:         1024,
	}
}

// Validate reports the first invalid field. Volume is not checked here: it
// is clamped instead of rejected.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate:
		return invalid(ErrSampleRate, "%d Hz", c.SampleRate)
	case c.Channels < 1 || c.Channels > MaxChannels:
		return invalid(ErrChannels, "%d", c.Channels)
	case c.FadeDuration < 0:
		return invalid(ErrFadeDuration, "%s", c.FadeDuration)
	case c.PeekDepth < 0 || c.PeekDepth > MaxPeekDepth:
		return invalid(ErrPeekDepth, "%d", c.PeekDepth)
	case c.Quantum < MinQuantum || c.Quantum > MaxQuantum:
		return invalid(ErrQuantum, "%d", c.Quantum)
	}
	if _, err := NewSmoothClip(c.SmoothClipX1, c.SmoothClipX2); err != nil {
		return err
	}
	return validateDevice(c.PreferredDevice)
}

func invalid(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidConfiguration, cause, fmt.Sprintf(format, args...))
}

func validateDevice(name string) error {
	if strings.ContainsFunc(name, unicode.IsControl) {
		return invalid(ErrDevice, "%q", name)
	}
	return nil
}
