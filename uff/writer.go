// SPDX-License-Identifier: MPL-2.0

// Package uff serializes calibrated channel data into Universal File Format
// Dataset Type 58 blocks, in both the ASCII and binary (58b) layouts.
package uff

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/opendaq/dts2uff/dts"
)

// WriteASCII appends one ASCII Type-58 dataset block for data to w.
func WriteASCII(w io.Writer, data *dts.ChannelData, label string) error {
	rw := newRecordWriter(w)

	rw.record(recSeparator)
	rw.record(recTypeASCII)
	writeIdentification(rw, data, label, ordDataTypeASCII)

	// Data section: four fields of twenty characters per line.
	var line strings.Builder
	for i, sample := range data.TimeSeries {
		line.WriteString(FormatScientific(float64(sample), dataSigDigits, dataFieldWidth))
		if (i+1)%samplesPerLine == 0 {
			rw.record(line.String())
			line.Reset()
		}
	}
	if line.Len() > 0 {
		rw.record(line.String())
	}

	rw.record(recSeparator)
	return rw.flush()
}

// WriteBinary appends one binary (58b) Type-58 dataset block for data to w.
// The sample payload is raw little-endian IEEE single precision.
func WriteBinary(w io.Writer, data *dts.ChannelData, label string) error {
	rw := newRecordWriter(w)

	payloadBytes := 4 * len(data.TimeSeries)

	rw.record(recSeparator)
	rw.record(fmt.Sprintf("%6s%6d%6d%12d%12d",
		typeBinary, byteOrderLittle, fpFormatIEEE, asciiLineCount, payloadBytes))
	writeIdentification(rw, data, label, ordDataTypeBinary)

	if rw.err == nil {
		buf := make([]byte, payloadBytes)
		for i, sample := range data.TimeSeries {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(sample))
		}
		_, rw.err = rw.w.Write(buf)
	}
	rw.raw(lineTerminator)

	rw.record(recSeparator)
	return rw.flush()
}

// WriteASCIIFile writes one ASCII dataset block to the file at path,
// appending to an existing dataset when appendMode is true and truncating
// otherwise.
func WriteASCIIFile(path string, data *dts.ChannelData, label string, appendMode bool) error {
	return writeFile(path, data, label, appendMode, WriteASCII)
}

// WriteBinaryFile is the 58b counterpart of WriteASCIIFile.
func WriteBinaryFile(path string, data *dts.ChannelData, label string, appendMode bool) error {
	return writeFile(path, data, label, appendMode, WriteBinary)
}

func writeFile(path string, data *dts.ChannelData, label string, appendMode bool, write func(io.Writer, *dts.ChannelData, string) error) error {
	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("error opening UFF output file: %w", err)
	}

	if err := write(f, data, label); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeIdentification emits the ten ASCII identification records shared by
// both variants: five ID lines, the DOF record, the data form, and the
// abscissa/ordinate/denominator characteristics.
func writeIdentification(rw *recordWriter, data *dts.ChannelData, label string, ordDataType int) {
	rw.record("")
	rw.record("Pt=" + truncate(label, maxPointLabel) + ";")
	rw.record("")
	rw.record("NONE")
	rw.record("NONE")

	shortLabel := truncate(label, maxShortLabel)

	// DOF identification: function type, id, version, load case, label.
	rw.record(fmt.Sprintf("%5d%10d%5d%10d %s", funcTimeResponse, 0, 0, 0, shortLabel))

	// Data form: ordinate type, point count, even spacing, abscissa start,
	// abscissa increment, z-axis value.
	timeStep := 1.0 / data.SampleRateHz
	rw.record(fmt.Sprintf("%10d%10d%10d%s%s%s",
		ordDataType, len(data.TimeSeries), evenSpacing,
		FormatScientific(0, headerSigDigits, headerFieldWidth),
		FormatScientific(timeStep, headerSigDigits, headerFieldWidth),
		FormatScientific(0, headerSigDigits, headerFieldWidth)))

	rw.record(fmt.Sprintf("%10d%5d%5d%5d %-20s %s", abscissaTypeTime, 0, 0, 0, "Time", "s"))
	rw.record(fmt.Sprintf("%10d%5d%5d%5d %-20s %s", ordinateGeneral, 0, 0, 0, shortLabel, truncate(data.Unit, maxUnitLabel)))
	rw.record(fmt.Sprintf("%10d%5d%5d%5d %-20s %s", 0, 0, 0, 0, "NONE", "NONE"))
}

// recordWriter pads every record to the fixed width and carries the first
// write error so callers can write straight-line record sequences.
type recordWriter struct {
	w   *bufio.Writer
	err error
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: bufio.NewWriter(w)}
}

func (rw *recordWriter) record(s string) {
	if rw.err != nil {
		return
	}
	if pad := recordWidth - len(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	_, rw.err = rw.w.WriteString(s + lineTerminator)
}

func (rw *recordWriter) raw(s string) {
	if rw.err != nil {
		return
	}
	_, rw.err = rw.w.WriteString(s)
}

func (rw *recordWriter) flush() error {
	if rw.err != nil {
		return fmt.Errorf("error writing UFF dataset: %w", rw.err)
	}
	return rw.w.Flush()
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
