// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrNegativeSeek is returned for an absolute seek to a negative offset.
	// Some container backends misbehave on it, so it never reaches them.
	ErrNegativeSeek = errors.New("absolute seek to negative offset")

	// ErrSeekUnsupported is returned when the source cannot seek.
	ErrSeekUnsupported = errors.New("source does not support seeking")

	// ErrUnknownFormat is returned when no decoder is registered for a format.
	ErrUnknownFormat = errors.New("unknown audio format")

	// ErrInvalidChannels is returned for a channel count below one.
	ErrInvalidChannels = errors.New("channel count must be positive")
)
