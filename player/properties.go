// SPDX-License-Identifier: EPL-2.0

package player

import (
	"github.com/samber/lo"
)

// Sample format of everything the player outputs.
const (
	OutSampleFormat = "int"
	OutSampleBits   = 16
)

// Config returns a copy of the current settings.
func (p *Player) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// SetQueue replaces the queue. It waits for a running transition to finish
// with the old one.
func (p *Player) SetQueue(q Queue) {
	p.mu.Lock()
	p.lockQueue()
	p.queue = q
	p.unlockQueue()
	p.mu.Unlock()
}

func (p *Player) SetPeekQueue(pq PeekQueue) {
	p.mu.Lock()
	p.lockQueue()
	p.peekQueue = pq
	p.unlockQueue()
	p.peeksDirty = true
	p.wakeWorker()
	p.mu.Unlock()
}

// CurrentSong returns the song of the current stream, or nil when the
// current song could not be opened.
func (p *Player) CurrentSong() Song {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.curSong == nil {
		return nil
	}
	is := p.streams.Current()
	if is == nil {
		return nil
	}
	defer is.Release()
	if is.song.Key() != p.curSong.Key() {
		return nil
	}
	return is.song
}

// Position returns the position in seconds of the current stream.
func (p *Player) Position() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	is := p.streams.Current()
	if is == nil {
		return 0, false
	}
	defer is.Release()
	return is.Position(), true
}

// Length returns the duration in seconds of the current stream, false
// when there is none or it is unknown.
func (p *Player) Length() (float64, bool) {
	is := p.streams.Current()
	if is == nil {
		return 0, false
	}
	defer is.Release()
	return is.Length()
}

func (p *Player) Metadata() map[string]string {
	is := p.streams.Current()
	if is == nil {
		return nil
	}
	defer is.Release()
	return is.Metadata()
}

func (p *Player) GainFactor() (float64, bool) {
	is := p.streams.Current()
	if is == nil {
		return 0, false
	}
	defer is.Release()
	return is.GainFactor(), true
}

// OutSampleFormat reports the output sample type and width.
func (p *Player) OutSampleFormat() (string, int) {
	return OutSampleFormat, OutSampleBits
}

// ActualSoundDevice names the device the sink plays on, "" when unknown.
func (p *Player) ActualSoundDevice() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if dn, ok := p.sink.(DeviceNamer); ok {
		return dn.DeviceName()
	}
	return ""
}

// SetVolume sets the linear volume, clamped to [0, MaxVolume].
func (p *Player) SetVolume(v float64) {
	v = lo.Clamp(v, 0, MaxVolume)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Volume = v
	p.out.volume = v
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Volume
}

// SetVolumeAdjust toggles volume and replay gain. When off only the fade
// envelope and the clip apply.
func (p *Player) SetVolumeAdjust(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.VolumeAdjust = on
	p.out.volumeAdjust = on
}

func (p *Player) SetSmoothClip(x1, x2 float64) error {
	clip, err := NewSmoothClip(x1, x2)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.SmoothClipX1, p.cfg.SmoothClipX2 = x1, x2
	p.out.clip = clip
	return nil
}

func (p *Player) SmoothClip() SmoothClip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.clip
}

func (p *Player) SetNextSongOnEOF(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.NextSongOnEOF = on
}

// SetSoundcardOutput switches between live sink output and pull mode. It
// is rejected while playing.
func (p *Player) SetSoundcardOutput(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return invalid(ErrPlaying, "soundcard output")
	}
	p.cfg.SoundcardOutput = on
	return nil
}

// SetPreferredDevice records the device to ask the sink for. It applies
// the next time the sink is opened, which is right away when stopped.
func (p *Player) SetPreferredDevice(name string) error {
	if err := validateDevice(name); err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg.PreferredDevice = name
	var sink Sink
	if !p.playing {
		sink, p.sink = p.sink, nil
	}
	p.mu.Unlock()

	if sink != nil {
		return sink.Close()
	}
	return nil
}

func (p *Player) SetSampleRate(rate int) error {
	p.mu.Lock()
	ch := p.cfg.Channels
	p.mu.Unlock()
	return p.SetAudioTarget(rate, ch)
}

func (p *Player) SetChannels(channels int) error {
	p.mu.Lock()
	rate := p.cfg.SampleRate
	p.mu.Unlock()
	return p.SetAudioTarget(rate, channels)
}

// SetAudioTarget changes the output format. It is rejected while playing.
// The sink and every decode session are dropped; the current song is
// reopened in the new format at the same position.
func (p *Player) SetAudioTarget(rate, channels int) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return invalid(ErrPlaying, "audio target")
	}
	cfg := p.cfg
	cfg.SampleRate, cfg.Channels = rate, channels
	if err := cfg.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}

	p.lockQueue()
	defer p.unlockQueue()
	if p.playing {
		p.mu.Unlock()
		return invalid(ErrPlaying, "audio target")
	}

	p.cfg = cfg
	p.out.channels = channels
	sink := p.sink
	p.sink = nil

	var (
		song Song
		pos  float64
	)
	if is := p.streams.Current(); is != nil {
		if !is.eof.Load() {
			song, pos = is.song, is.Position()
		}
		is.Release()
	}
	open := p.openerLocked()
	p.mu.Unlock()

	if sink != nil {
		if err := sink.Close(); err != nil {
			p.log.Warn("closing sink", "error", err)
		}
	}
	p.streams.Clear()
	var reopened bool
	if song != nil {
		if err := p.streams.OpenCurrent(song, open); err != nil {
			p.log.Warn("cannot reopen song for new audio target", "song", song.Key(), "error", err)
		} else {
			reopened = true
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if reopened && pos > 0 {
		if is := p.streams.Current(); is != nil {
			if err := is.seek(pos); err != nil {
				is.log.Warn("seek after reopen failed", "error", err)
			}
			is.Release()
		}
	}
	p.outOfSync = true
	p.peeksDirty = true
	return nil
}
