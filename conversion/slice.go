// SPDX-License-Identifier: MPL-2.0

package conversion

import (
	"fmt"
	"strconv"
	"strings"
)

// SampleSlice selects the half-open sample range [Start, End) from every
// exported track. Requests outside the available samples are an error,
// never clamped.
type SampleSlice struct {
	Start int // inclusive
	End   int // exclusive
}

// ParseSampleSlice parses a "start:end" range with zero-based, non-negative
// integer bounds. Step values are not supported.
func ParseSampleSlice(s string) (SampleSlice, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return SampleSlice{}, &ValidationError{
			Field:  "slice",
			Value:  s,
			Reason: "expected 'start:end'",
		}
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || start < 0 {
		return SampleSlice{}, &ValidationError{
			Field:  "slice",
			Value:  s,
			Reason: "start must be a non-negative integer",
		}
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || end < 0 {
		return SampleSlice{}, &ValidationError{
			Field:  "slice",
			Value:  s,
			Reason: "end must be a non-negative integer",
		}
	}

	slice := SampleSlice{Start: start, End: end}
	if start >= end {
		return SampleSlice{}, &ValidationError{
			Field:  "slice",
			Value:  s,
			Reason: "start must be less than end",
		}
	}
	return slice, nil
}

// Validate checks the slice against the (already truncated) track length.
func (s SampleSlice) Validate(length int) error {
	if s.Start >= s.End {
		return &ValidationError{
			Field:  "slice",
			Value:  s.String(),
			Reason: "start must be less than end",
		}
	}
	if s.End > length {
		return &ValidationError{
			Field:  "slice",
			Value:  s.String(),
			Reason: fmt.Sprintf("end exceeds available samples (%d)", length),
		}
	}
	return nil
}

func (s SampleSlice) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}
