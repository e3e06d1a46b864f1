// SPDX-License-Identifier: MPL-2.0

package dts

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chnFixture builds a synthetic .chn file image for tests.
type chnFixture struct {
	magic        uint32
	triggerCount uint16
	triggerSamp  int64
	preTestZero  int32
	dataZero     int32
	scaleMV      float64
	scaleEU      float64
	sampleRate   float64
	dataOffset   uint64
	samples      []int16
}

func defaultChnFixture(samples []int16) chnFixture {
	return chnFixture{
		magic:      chnMagic,
		scaleMV:    1.0,
		scaleEU:    1.0,
		sampleRate: 1000.0,
		dataOffset: 128,
		samples:    samples,
	}
}

func (c chnFixture) bytes() []byte {
	buf := make([]byte, int(c.dataOffset)+2*len(c.samples))

	binary.LittleEndian.PutUint32(buf[offMagic:], c.magic)
	binary.LittleEndian.PutUint64(buf[offSampleDataOffset:], c.dataOffset)
	binary.LittleEndian.PutUint64(buf[offSampleCount:], uint64(len(c.samples)))
	binary.LittleEndian.PutUint64(buf[offSampleRate:], math.Float64bits(c.sampleRate))
	binary.LittleEndian.PutUint16(buf[offTriggerCount:], c.triggerCount)

	// With zero triggers the zero-level fields overlap the trigger region,
	// so the trigger sample is written first and may be clobbered below.
	binary.LittleEndian.PutUint64(buf[offTriggerSample:], uint64(c.triggerSamp))

	shift := int(c.triggerCount) * triggerEntrySize
	binary.LittleEndian.PutUint32(buf[basePreTestZero+shift:], uint32(c.preTestZero))
	binary.LittleEndian.PutUint32(buf[baseDataZero+shift:], uint32(c.dataZero))
	binary.LittleEndian.PutUint64(buf[baseDataZero+shift+4:], math.Float64bits(c.scaleMV))
	binary.LittleEndian.PutUint64(buf[baseDataZero+shift+12:], math.Float64bits(c.scaleEU))

	for i, s := range c.samples {
		binary.LittleEndian.PutUint16(buf[int(c.dataOffset)+2*i:], uint16(s))
	}
	return buf
}

func (c chnFixture) write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, c.bytes(), 0o644))
}

const fixtureXML = `<?xml version="1.0" encoding="utf-8"?>
<TestSetup>
  <Module StartRecordSampleNumber="0">
    <AnalogInputChanel Description="IEPE 100 mV/g" SerialNumber="PCB_B34_xx" Sensitivity="98.5176059" Eu="g" ProportionalToExcitation="False" IsInverted="False" InitialEu="0" ZeroMethod="None" AbsoluteDisplayOrder="1" />
    <AnalogInputChanel Description="IEPE 50 mV/g" SerialNumber="PCB_B35_xx" Sensitivity="51.25" Eu="g" ProportionalToExcitation="False" IsInverted="False" InitialEu="0" ZeroMethod="None" AbsoluteDisplayOrder="2" />
  </Module>
</TestSetup>`

// writeFixtureDir lays out a two-channel DTS export: metadata plus channel
// files whose names are deliberately not zero-padded.
func writeFixtureDir(t *testing.T, samplesA, samplesB []int16) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.dts"), []byte(fixtureXML), 0o644))
	defaultChnFixture(samplesA).write(t, filepath.Join(dir, "chan2.chn"))
	defaultChnFixture(samplesB).write(t, filepath.Join(dir, "chan10.chn"))

	return dir
}
