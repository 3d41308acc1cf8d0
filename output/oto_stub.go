// SPDX-License-Identifier: EPL-2.0

//go:build headless || !((linux && cgo) || windows || darwin)

package output

import (
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/player"
)

// OpenOto always fails in builds without sound device support.
func OpenOto(format audio.Format, device string) (player.Sink, error) {
	return nil, ErrNoDevice
}
