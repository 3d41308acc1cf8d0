// SPDX-License-Identifier: EPL-2.0

// Package player is a gapless, queue-driven playback engine.
//
// A Player pulls songs from a Queue, opens each with a Decoder and renders
// the decoded frames through a volume and replay gain stage, a fade
// envelope and a smooth clipper into interleaved 16-bit samples. Output
// either goes to a Sink driven by a worker goroutine, or is pulled by the
// caller with ReadOutStream.
//
// # Streams
//
// Every open song is an InStream, a reference counted decode session. The
// InStreams cache holds the current stream and the streams prefetched for
// the songs a PeekQueue reports next, so moving to the next song does not
// wait for a decoder to open. The worker tops the prefetch list up while it
// is shorter than Config.PeekDepth, which picks up songs appended to the
// queue late and retries prefetches that failed.
//
// # Skipping
//
// NextSong on an audible stream fades it out first and finishes the skip
// once the envelope reaches silence. Skips requested during that fade are
// absorbed by it. A song whose decoder fails to open is reported with
// SongChange.ErrorOnOpening and skipped.
//
// # Locking
//
// One mutex guards the player state. Decoders are opened and sinks written
// without it, and notifications run after it is released. A separate flag
// lets one queue transition run at a time; whoever waited for it sees the
// state left behind, including a closed player or a removed queue.
package player
