// SPDX-License-Identifier: MPL-2.0

package conversion

import (
	"errors"
	"fmt"
)

// ErrBackgroundTask marks a failure of the extraction machinery itself, as
// opposed to the extraction work failing. Callers can use it to distinguish
// infrastructure failure from domain failure.
var ErrBackgroundTask = errors.New("background extraction task failed")

// ValidationError reports a caller-supplied value that cannot be used:
// an empty required path, an unparseable format or slice string, a slice
// outside the available samples, or a track filter that matches nothing.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
