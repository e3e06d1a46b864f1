// SPDX-License-Identifier: MPL-2.0

package dts

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// ReadChannelHeader decodes the fixed-layout header of a single .chn file.
// It fails with a FormatError if the magic value mismatches or the file is
// shorter than the header demands.
func ReadChannelHeader(path string) (*ChannelHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening channel file: %w", err)
	}
	defer f.Close()

	return decodeChannelHeader(bufio.NewReader(f), path)
}

func decodeChannelHeader(r io.Reader, path string) (*ChannelHeader, error) {
	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, &FormatError{Path: path, Reason: "channel header truncated", Err: err}
	}

	if magic := binary.LittleEndian.Uint32(fixed[offMagic:]); magic != chnMagic {
		return nil, &FormatError{Path: path, Reason: ErrBadMagic.Error(), Err: ErrBadMagic}
	}

	hdr := &ChannelHeader{
		SampleDataOffset:    binary.LittleEndian.Uint64(fixed[offSampleDataOffset:]),
		SampleCount:         binary.LittleEndian.Uint64(fixed[offSampleCount:]),
		SampleRateHz:        math.Float64frombits(binary.LittleEndian.Uint64(fixed[offSampleRate:])),
		TriggerCount:        binary.LittleEndian.Uint16(fixed[offTriggerCount:]),
		TriggerSampleNumber: int64(binary.LittleEndian.Uint64(fixed[offTriggerSample:])),
	}

	// The rest of the header floats with the trigger table. With zero
	// triggers the pre-test zero level sits back inside the fixed region,
	// overlapping the trigger sample number, so decode from one buffer of
	// absolute offsets.
	buf := make([]byte, headerSize(hdr.TriggerCount))
	copy(buf, fixed)
	if _, err := io.ReadFull(r, buf[fixedHeaderSize:]); err != nil {
		return nil, &FormatError{Path: path, Reason: "channel header truncated", Err: err}
	}

	shift := int(hdr.TriggerCount) * triggerEntrySize
	preTestOff := basePreTestZero + shift
	dataZeroOff := baseDataZero + shift

	hdr.PreTestZeroLevelADC = int32(binary.LittleEndian.Uint32(buf[preTestOff:]))
	hdr.DataZeroLevelADC = int32(binary.LittleEndian.Uint32(buf[dataZeroOff:]))
	hdr.ScaleFactorMV = math.Float64frombits(binary.LittleEndian.Uint64(buf[dataZeroOff+4:]))
	hdr.ScaleFactorEU = math.Float64frombits(binary.LittleEndian.Uint64(buf[dataZeroOff+12:]))

	return hdr, nil
}
