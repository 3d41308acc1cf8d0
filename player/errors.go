// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	// ErrDecoderOpen is wrapped with the song key and the decoder's cause.
	ErrDecoderOpen     = errors.New("cannot open input stream")
	ErrQueueExhausted  = errors.New("player queue does not have more songs")
	ErrEndOfQueue      = errors.New("end of queue")
	ErrNoQueue         = errors.New("player queue is not set")
	ErrSeek            = errors.New("seek failed")
	ErrNoStream        = errors.New("no open stream")
	ErrNotPlaying      = errors.New("cannot read output while not playing")
	ErrSoundcardOutput = errors.New("cannot read output with soundcard output enabled")
	ErrFormatMismatch  = errors.New("decoder output format does not match target")
	ErrNoSink          = errors.New("soundcard output enabled without a sink")
	ErrNoDecoder       = errors.New("no decoder")
	ErrClosed          = errors.New("player closed")

	// ErrInvalidConfiguration wraps every rejected setting together with
	// one of the more specific causes below.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrPlaying              = errors.New("cannot change while playing")
	ErrSampleRate           = errors.New("sample rate out of range")
	ErrChannels             = errors.New("channel count out of range")
	ErrSmoothClip           = errors.New("smooth clip needs 0 <= x1 < 1 <= x2 and x1 < x2")
	ErrDevice               = errors.New("malformed device identifier")
	ErrFadeDuration         = errors.New("negative fade duration")
	ErrPeekDepth            = errors.New("peek depth out of range")
	ErrQuantum              = errors.New("render quantum out of range")
)
