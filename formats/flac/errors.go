// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

// ErrNotFlacFile indicates the stream does not start with a FLAC signature.
var ErrNotFlacFile = errors.New("not a FLAC file")
