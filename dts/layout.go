// SPDX-License-Identifier: MPL-2.0

package dts

// Byte layout of the .chn binary header. All fields are little-endian.
// These offsets are an external contract inherited from the acquisition
// hardware; the two zero-level fields float with the trigger table, whose
// entries are 8 bytes each.
const (
	chnMagic uint32 = 0x2C36351F

	offMagic            = 0  // uint32
	offSampleDataOffset = 8  // uint64
	offSampleCount      = 16 // uint64
	offSampleRate       = 32 // float64
	offTriggerCount     = 40 // uint16
	offTriggerSample    = 42 // int64

	// Offsets below are relative bases; add triggerCount*triggerEntrySize.
	basePreTestZero = 42 // int32
	baseDataZero    = 70 // int32, then float64 scale mV, float64 scale EU

	triggerEntrySize = 8

	// fixedHeaderSize covers everything up to and including the trigger
	// sample number; the remainder of the header depends on TriggerCount.
	fixedHeaderSize = 50
)

// headerSize returns the number of bytes needed to decode the full header
// for a file with the given trigger count.
func headerSize(triggerCount uint16) int {
	return baseDataZero + int(triggerCount)*triggerEntrySize + 4 + 8 + 8
}
