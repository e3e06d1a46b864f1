// SPDX-License-Identifier: MPL-2.0

package uff

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatScientificExact(t *testing.T) {
	cases := []struct {
		value float64
		sig   int
		width int
		want  string
	}{
		{0.0, 11, 20, "    0.0000000000e+00"},
		{1.0, 11, 20, "    1.0000000000e+00"},
		{-1.0, 11, 20, "   -1.0000000000e+00"},
		{-2.5, 11, 20, "   -2.5000000000e+00"},
		{5e-06, 11, 20, "    5.0000000000e-06"},
		{0.0, 6, 13, "  0.00000e+00"},
		{0.1, 6, 13, "  1.00000e-01"},
		{200000.0, 6, 13, "  2.00000e+05"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatScientific(tc.value, tc.sig, tc.width), "value %v", tc.value)
	}
}

func TestFormatScientificExponentDigits(t *testing.T) {
	// Two exponent digits below 100, three at or above, no extra zeros.
	require.Equal(t, "1.0000000000e+99", strings.TrimSpace(FormatScientific(1e99, 11, 20)))
	require.Equal(t, "1.0000000000e+100", strings.TrimSpace(FormatScientific(1e100, 11, 20)))
	require.Equal(t, "1.0000000000e-120", strings.TrimSpace(FormatScientific(1e-120, 11, 20)))
	require.Equal(t, "1.0000000000e-07", strings.TrimSpace(FormatScientific(1e-7, 11, 20)))
}

func TestFormatScientificRoundTrip(t *testing.T) {
	values := []float64{0.0, 1.0, -1.0, 3.25e-12, -9.87654321e+17, 6.02214076e23, 2.5e-300, 123456.789}
	for _, v := range values {
		field := FormatScientific(v, 11, 20)
		require.Len(t, field, 20, "value %v", v)

		parsed, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		require.NoError(t, err)
		if v == 0 {
			require.Zero(t, parsed)
			continue
		}
		require.InEpsilon(t, v, parsed, 1e-9, "value %v", v)
	}
}
