// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts interleaved audio from the source channel count to
// a target channel count:
//   - N -> 1 averages all channels
//   - 1 -> N duplicates the mono channel
//   - N -> M otherwise maps output channel c to source channel c mod N
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMixer(src Source, channels int) (*ChannelMixer, error) {
	if channels < 1 {
		return nil, ErrInvalidChannels
	}
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}, nil
}

// NewMonoMixer downmixes src to a single channel.
func NewMonoMixer(src Source) *ChannelMixer {
	m, _ := NewChannelMixer(src, 1)
	return m
}

func (m *ChannelMixer) SampleRate() int             { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int               { return m.channels }
func (m *ChannelMixer) BufSize() int                { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) Len() int64                  { return LenFrames(m.src) }
func (m *ChannelMixer) SeekFrame(frame int64) error { return SeekFrame(m.src, frame) }
func (m *ChannelMixer) Metadata() map[string]string { return MetadataOf(m.src) }

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / m.channels
	samplesNeeded := frames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case m.channels == 1 && in == 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	case m.channels == 1:
		inv := float32(1.0) / float32(in)
		for f := range frames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	default:
		for f := range frames {
			base := f * in
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = m.tmp[base+c%in]
			}
		}
	}

	return frames * m.channels, err
}
