// SPDX-License-Identifier: EPL-2.0

package main

import (
	"io"
	"log/slog"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
)

func testRegistry() *audio.Registry { return audplay.NewRegistry() }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
