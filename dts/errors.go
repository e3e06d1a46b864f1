// SPDX-License-Identifier: MPL-2.0

package dts

import (
	"errors"
	"fmt"
)

// ErrBadMagic is returned when a .chn file does not start with the expected
// magic value.
var ErrBadMagic = errors.New("not a valid DTS .chn file (magic key mismatch)")

// ErrTrackOutOfBounds is returned when a track index is not a valid channel index.
var ErrTrackOutOfBounds = errors.New("track index is out of bounds")

// FormatError reports malformed DTS input: a bad magic value, a truncated
// header, an undecodable metadata document, or a metadata/file count mismatch.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }
