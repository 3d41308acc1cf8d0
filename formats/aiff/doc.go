// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files. Signed
// PCM at 8, 16, 24 and 32 bits is accepted; samples come out as float32 in
// [-1.0, 1.0] regardless of the big-endian storage.
//
// Sources report their length from the COMM chunk frame count. Seeking
// rewinds the sound data and discards up to the target, so it costs time
// proportional to the target position.
package aiff
