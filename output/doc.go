// SPDX-License-Identifier: EPL-2.0

// Package output provides player.Sink implementations.
//
//   - Oto plays on the system sound device through oto. It needs cgo on
//     Linux and is replaced by a stub that always fails when built with
//     the headless tag or without device support.
//   - WAVFile records the rendered stream into a 16-bit WAV file.
//   - Discard drops everything, pacing itself to real time if asked to.
//
// Each has an opener matching player.SinkOpener.
package output
