// SPDX-License-Identifier: MPL-2.0

package uff

// Record layout of the Type-58 dataset as the legacy producer writes it.
// Every text record is exactly recordWidth characters, CRLF terminated,
// right-padded with spaces. Field widths live here rather than inline so a
// fixture mismatch is a one-line fix.
const (
	recordWidth    = 80
	lineTerminator = "\r\n"

	recSeparator = "    -1"
	recTypeASCII = "    58"
	typeBinary   = "58b"

	// Data section (ASCII variant): four samples per line, each rendered
	// into a fixed field with the legacy scientific formatter.
	samplesPerLine = 4
	dataFieldWidth = 20
	dataSigDigits  = 11

	// Scientific fields on the data-form record.
	headerFieldWidth = 13
	headerSigDigits  = 6

	// Label truncation limits.
	maxPointLabel = 64 // ID record 2, "Pt=<label>;"
	maxShortLabel = 19 // DOF and ordinate records
	maxUnitLabel  = 33 // ordinate unit string

	// Field codes.
	funcTimeResponse  = 1  // function type, record 6
	ordDataTypeASCII  = 4  // double precision, even abscissa
	ordDataTypeBinary = 2  // single precision, even abscissa
	abscissaTypeTime  = 17 // record 8 "Time"
	ordinateGeneral   = 8  // record 9
	evenSpacing       = 1

	// Binary (58b) type-record codes.
	byteOrderLittle = 1
	byteOrderBig    = 2
	fpFormatIEEE    = 2
	asciiLineCount  = 11
)
