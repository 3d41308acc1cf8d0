// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams using the gopxl/beep flac decoder,
// with tags read through github.com/mewkiz/flac.
//
// Mono files stay mono; anything wider is delivered as stereo, which is
// what the beep decoder produces.
package flac
