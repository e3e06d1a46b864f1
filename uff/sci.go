// SPDX-License-Identifier: MPL-2.0

package uff

import (
	"strconv"
	"strings"
)

// FormatScientific renders v with the given number of significant decimal
// digits followed by a signed exponent, right-justified in a field of the
// given width. The exponent carries two digits when its magnitude is below
// 100 and three otherwise, with no extra leading zeros; this matches the
// legacy producer and must stay fixture-exact.
func FormatScientific(v float64, sigDigits, width int) string {
	s := strconv.FormatFloat(v, 'e', sigDigits-1, 64)

	if e := strings.LastIndexByte(s, 'e'); e >= 0 {
		mantissa, exp := s[:e], s[e+1:]
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		if len(digits) < 2 {
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}
		s = mantissa + "e" + sign + digits
	}

	if pad := width - len(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}
