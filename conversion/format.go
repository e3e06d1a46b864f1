// SPDX-License-Identifier: MPL-2.0

package conversion

import "strings"

// OutputFormat selects the Type-58 variant written to the output file.
type OutputFormat int

const (
	// FormatASCII writes the plain-text dataset layout.
	FormatASCII OutputFormat = iota
	// FormatBinary writes the 58b layout with a raw float32 payload.
	FormatBinary
)

// String returns the lowercase name accepted by ParseOutputFormat.
func (f OutputFormat) String() string {
	if f == FormatBinary {
		return "binary"
	}
	return "ascii"
}

// ParseOutputFormat parses "ascii" or "binary", case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascii":
		return FormatASCII, nil
	case "binary":
		return FormatBinary, nil
	default:
		return FormatASCII, &ValidationError{
			Field:  "format",
			Value:  s,
			Reason: "expected 'ascii' or 'binary'",
		}
	}
}
