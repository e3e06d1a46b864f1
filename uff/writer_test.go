// SPDX-License-Identifier: MPL-2.0

package uff_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opendaq/dts2uff/dts"
	"github.com/opendaq/dts2uff/uff"
)

func testChannel() *dts.ChannelData {
	return &dts.ChannelData{
		TimeSeries:   []float32{1.0, -2.5},
		SampleRateHz: 10.0,
		Unit:         "g",
	}
}

// recordLines splits a dataset into its records, asserting that every one is
// exactly 80 characters wide and CRLF terminated.
func recordLines(t *testing.T, text string) []string {
	t.Helper()
	require.True(t, strings.HasSuffix(text, "\r\n"))
	require.NotContains(t, strings.ReplaceAll(text, "\r\n", ""), "\r")
	lines := strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")
	for i, line := range lines {
		require.Len(t, line, 80, "record %d", i)
	}
	return lines
}

func TestWriteASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, uff.WriteASCII(&buf, testChannel(), "Chan 1"))

	lines := recordLines(t, buf.String())
	require.Len(t, lines, 14)

	want := []string{
		"    -1",
		"    58",
		"",
		"Pt=Chan 1;",
		"",
		"NONE",
		"NONE",
		"    1         0    0         0 Chan 1",
		"         4         2         1  0.00000e+00  1.00000e-01  0.00000e+00",
		"        17    0    0    0 Time                 s",
		"         8    0    0    0 Chan 1               g",
		"         0    0    0    0 NONE                 NONE",
		"    1.0000000000e+00   -2.5000000000e+00",
		"    -1",
	}
	for i, line := range lines {
		require.Equal(t, want[i], strings.TrimRight(line, " "), "record %d", i)
	}
}

func TestWriteASCIIDataLineGrouping(t *testing.T) {
	data := &dts.ChannelData{
		TimeSeries:   []float32{1, 2, 3, 4, 5},
		SampleRateHz: 1.0,
		Unit:         "g",
	}

	var buf bytes.Buffer
	require.NoError(t, uff.WriteASCII(&buf, data, "t"))

	lines := recordLines(t, buf.String())
	// 12 header records, two data lines (4 + 1 samples), one separator.
	require.Len(t, lines, 15)
	require.Equal(t, 4, strings.Count(lines[12], "e+00"))
	require.Equal(t, "    5.0000000000e+00", strings.TrimRight(lines[13], " "))
}

func TestWriteASCIITruncatesLabels(t *testing.T) {
	long := strings.Repeat("x", 100)
	data := testChannel()
	data.Unit = strings.Repeat("u", 50)

	var buf bytes.Buffer
	require.NoError(t, uff.WriteASCII(&buf, data, long))

	lines := recordLines(t, buf.String())
	require.Equal(t, "Pt="+long[:64]+";", strings.TrimRight(lines[3], " "))
	require.Contains(t, lines[7], long[:19])
	require.NotContains(t, lines[7], long[:20])
	require.Contains(t, lines[10], strings.Repeat("u", 33))
	require.NotContains(t, lines[10], strings.Repeat("u", 34))
}

func TestWriteBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, uff.WriteBinary(&buf, testChannel(), "Chan 1"))

	out := buf.Bytes()
	// 12 text records of 82 bytes, 8 payload bytes, a CRLF, and the closing
	// separator record.
	require.Len(t, out, 12*82+8+2+82)

	header := string(out[:12*82])
	lines := recordLines(t, header)
	require.Equal(t, "   58b     1     2          11           8", strings.TrimRight(lines[1], " "))
	// Single precision ordinate data type for the binary variant.
	require.Equal(t, "         2         2         1", lines[8][:30])

	payload := out[12*82 : 12*82+8]
	require.Equal(t, float32(1.0), math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4])))
	require.Equal(t, float32(-2.5), math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8])))

	require.Equal(t, "\r\n", string(out[12*82+8:12*82+10]))
	require.Equal(t, "    -1", strings.TrimRight(string(out[len(out)-82:]), " \r\n"))
}

func TestWriteFileAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.uff")

	require.NoError(t, uff.WriteASCIIFile(path, testChannel(), "a", false))
	require.NoError(t, uff.WriteASCIIFile(path, testChannel(), "b", true))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(raw)
	require.Equal(t, 2, strings.Count(text, "Pt=a;")+strings.Count(text, "Pt=b;"))
	require.Len(t, recordLines(t, text), 28)

	// Truncate mode starts the dataset over.
	require.NoError(t, uff.WriteASCIIFile(path, testChannel(), "c", false))
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recordLines(t, string(raw)), 14)
}
