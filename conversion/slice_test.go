// SPDX-License-Identifier: MPL-2.0

package conversion_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opendaq/dts2uff/conversion"
)

func TestParseSampleSlice(t *testing.T) {
	slice, err := conversion.ParseSampleSlice("10:250")
	require.NoError(t, err)
	require.Equal(t, conversion.SampleSlice{Start: 10, End: 250}, slice)
	require.Equal(t, "10:250", slice.String())

	slice, err = conversion.ParseSampleSlice(" 0 : 5 ")
	require.NoError(t, err)
	require.Equal(t, conversion.SampleSlice{Start: 0, End: 5}, slice)

	for _, bad := range []string{"", "5", "1:2:3", "a:b", "-1:5", "5:-1", "5:5", "9:2"} {
		_, err := conversion.ParseSampleSlice(bad)
		var validationErr *conversion.ValidationError
		require.ErrorAs(t, err, &validationErr, "input %q", bad)
	}
}

func TestSampleSliceValidate(t *testing.T) {
	require.NoError(t, conversion.SampleSlice{Start: 0, End: 4}.Validate(4))
	require.NoError(t, conversion.SampleSlice{Start: 3, End: 4}.Validate(4))

	err := conversion.SampleSlice{Start: 0, End: 5}.Validate(4)
	var validationErr *conversion.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Reason, "exceeds available samples")

	err = conversion.SampleSlice{Start: 2, End: 2}.Validate(4)
	require.ErrorAs(t, err, &validationErr)
}

func TestParseOutputFormat(t *testing.T) {
	for input, want := range map[string]conversion.OutputFormat{
		"ascii":   conversion.FormatASCII,
		"ASCII":   conversion.FormatASCII,
		" binary": conversion.FormatBinary,
		"Binary":  conversion.FormatBinary,
	} {
		format, err := conversion.ParseOutputFormat(input)
		require.NoError(t, err, input)
		require.Equal(t, want, format, input)
	}

	_, err := conversion.ParseOutputFormat("xml")
	var validationErr *conversion.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "ascii", conversion.FormatASCII.String())
	require.Equal(t, "binary", conversion.FormatBinary.String())
}

func TestSplitTrackNames(t *testing.T) {
	names := conversion.SplitTrackNames("Accel 1, Accel 2\r\nAccel 3\n\n , ")
	require.Equal(t, []string{"Accel 1", "Accel 2", "Accel 3"}, names)

	require.Empty(t, conversion.SplitTrackNames(""))
	require.Empty(t, conversion.SplitTrackNames(" ,\n, "))
}
