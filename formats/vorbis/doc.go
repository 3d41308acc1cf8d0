// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// The returned audio.Source keeps the file's own rate and channel layout,
// exposes the vorbis comment header through audio.Tagger (keys lower
// cased, e.g. "title", "replaygain_track_gain"), and seeks by frame through
// audio.Seeker when the input reader is seekable.
package vorbis
