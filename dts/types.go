// SPDX-License-Identifier: MPL-2.0

package dts

// ZeroMethod selects which reference ADC level is used to compute the
// calibration offset for a channel.
type ZeroMethod int

const (
	// ZeroNone applies no zero correction beyond the initial EU value.
	ZeroNone ZeroMethod = iota
	// ZeroUsePreCalZero subtracts the pre-test zero level recorded before the run.
	ZeroUsePreCalZero
	// ZeroAverageOverTime subtracts the running-average zero level recorded
	// alongside the data.
	ZeroAverageOverTime
)

// String returns the attribute spelling used by the DTS metadata file.
func (z ZeroMethod) String() string {
	switch z {
	case ZeroUsePreCalZero:
		return "UsePreCalZero"
	case ZeroAverageOverTime:
		return "AverageOverTime"
	default:
		return "None"
	}
}

// ChannelMetadata holds the calibration and identity attributes of one
// analog input channel, parsed from the DTS metadata document.
//
// MeasuredExcitationVoltage, FactoryExcitationVoltage and Sensitivity use
// NaN to mean "absent", matching the source format where the attribute may
// be missing or unparseable.
type ChannelMetadata struct {
	ProportionalToExcitation  bool       // Output scales with excitation voltage
	IsInverted                bool       // Polarity of the recorded signal is flipped
	MeasuredExcitationVoltage float64    // Excitation measured during the test (NaN = absent)
	FactoryExcitationVoltage  float64    // Excitation from the factory calibration (NaN = absent)
	InitialEU                 float64    // Engineering-unit value at time zero
	ZeroMethod                ZeroMethod // Zero-offset policy
	Unit                      string     // Engineering unit label (e.g. "g")
	Description               string     // Sensor description
	SerialNumber              string     // Sensor serial number
	Sensitivity               float64    // Sensor sensitivity, mV per EU (NaN = absent)
	DisplayOrder              uint32     // Absolute ordering key across nested modules

	// StartRecordSampleNumber comes from the enclosing Module element. It is
	// structurally irrelevant to calibration but kept for fidelity with the
	// source format.
	StartRecordSampleNumber float64
}

// ChannelHeader is the fixed-layout header decoded from the front of a
// binary .chn file.
type ChannelHeader struct {
	SampleDataOffset    uint64  // Byte offset of the first ADC sample
	SampleCount         uint64  // Number of int16 samples recorded
	SampleRateHz        float64 // Sampling rate in Hz
	TriggerCount        uint16  // Number of trigger entries preceding the zero levels
	TriggerSampleNumber int64   // Sample index of the first trigger
	PreTestZeroLevelADC int32   // Zero level captured before the test
	DataZeroLevelADC    int32   // Running-average zero level captured with the data
	ScaleFactorMV       float64 // ADC counts to millivolts
	ScaleFactorEU       float64 // Millivolts to engineering units
}

// ChannelData is one calibrated channel ready for serialization.
type ChannelData struct {
	TimeSeries   []float32 // Samples in engineering units
	SampleRateHz float64   // Sampling rate in Hz
	Unit         string    // Engineering unit label
}

// TrackMetadata is the read-only per-channel summary exposed without
// extracting any sample data.
type TrackMetadata struct {
	Name         string  // Defaults to Description when no name is available
	Description  string  // Sensor description
	SamplingRate float64 // Sampling rate in Hz, from the binary header
	Sensitivity  float64 // Sensor sensitivity, mV per EU (NaN = absent)
	SerialNumber string  // Sensor serial number
	Unit         string  // Engineering unit label
}
