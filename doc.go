// SPDX-License-Identifier: EPL-2.0

// Package audplay ties the playback engine to real files.
//
// The player package knows songs only as opaque keys and asks a
// player.Decoder for sample streams. This package supplies that decoder
// for files on disk together with the queues a program needs around it.
//
// # Decoding
//
// Decoder opens any song implementing Media through an audio.Registry and
// converts the decoded stream to the format the player renders in:
//
//	dec := audplay.NewDecoder()
//	p, err := player.New(player.Options{Decoder: dec, Sink: output.OpenOto})
//
// NewRegistry registers every bundled container:
//   - WAV (PCM 16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//   - FLAC via formats/flac
//
// Convert inserts a Resampler only when the sample rates differ and a
// ChannelMixer only when the channel counts differ. ReadAll16 runs a
// source through Convert and collects 16-bit PCM, which is handy for
// offline conversion:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm16, _ := audplay.ReadAll16(src, audio.Format{SampleRate: 8000, Channels: 1}, 4096)
//
// # Queues
//
// SliceQueue is an in-memory queue that also supports peeking, so the
// player can prefetch the next songs. DirQueue fills a SliceQueue from a
// directory and can keep watching it for new files:
//
//	q, _ := audplay.NewDirQueue("/music/inbox", audplay.NewRegistry(), nil)
//	go q.Watch(ctx, nil)
//	p.SetQueue(q)
//	p.SetPeekQueue(q)
package audplay
