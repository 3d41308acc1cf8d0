// SPDX-License-Identifier: EPL-2.0

package player

import "github.com/ik5/audplay/audio"

// Sink receives rendered interleaved 16-bit samples in live output mode.
// Write may block; the player never holds its lock while writing.
type Sink interface {
	Write(samples []int16) error
	Close() error
}

// Flusher is implemented by sinks that can drop buffered audio, used after
// a seek or skip so stale samples are not heard.
type Flusher interface {
	Flush() error
}

// DeviceNamer is implemented by sinks that know which device they play on.
type DeviceNamer interface {
	DeviceName() string
}

// SinkOpener opens a sink for format. device is the preferred device and
// may be ignored.
type SinkOpener func(format audio.Format, device string) (Sink, error)
