// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	// ErrNoDevice is returned where no sound device backend is compiled in.
	ErrNoDevice = errors.New("no sound device support in this build")

	// ErrFormatLocked is returned when a device sink is requested in a
	// format other than the one the process-wide device context was
	// created with.
	ErrFormatLocked = errors.New("sound device already opened in another format")

	ErrSinkClosed = errors.New("sink closed")
)
