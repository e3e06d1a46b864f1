// SPDX-License-Identifier: MPL-2.0

package conversion

import (
	"fmt"
	"os"
	"strings"
)

// SplitTrackNames splits comma- or newline-separated track names, trimming
// whitespace and dropping empty entries while preserving order.
func SplitTrackNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if name := strings.TrimSpace(field); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// LoadTrackNames reads and splits the plain-text track-name file at path.
func LoadTrackNames(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track names from %s: %w", path, err)
	}
	return SplitTrackNames(string(contents)), nil
}
