// SPDX-License-Identifier: MPL-2.0

package dts

import "math"

// Calibration maps raw ADC samples to engineering units for one channel.
// It is derived once per channel from the binary header constants and the
// metadata attributes; applying it is pure arithmetic.
type Calibration struct {
	Scale  float64
	Offset float64
}

// NewCalibration derives the scale and offset for a channel.
//
// The operand order below is load-bearing: floating-point division is not
// associative, and the reference tool computes
// adc * (mV / eu / excitation) + offset with exactly this grouping. Changing
// it changes low bits of the output.
func NewCalibration(hdr *ChannelHeader, meta *ChannelMetadata) Calibration {
	scaleMV := hdr.ScaleFactorMV
	if meta.IsInverted {
		scaleMV = -scaleMV
	}

	var excitation float64
	switch {
	case !meta.ProportionalToExcitation:
		excitation = 1.0
	case math.IsNaN(meta.FactoryExcitationVoltage):
		excitation = meta.MeasuredExcitationVoltage
	default:
		excitation = meta.FactoryExcitationVoltage
	}

	var offset float64
	switch meta.ZeroMethod {
	case ZeroUsePreCalZero:
		offset = (-float64(hdr.PreTestZeroLevelADC) * scaleMV / hdr.ScaleFactorEU / excitation) + meta.InitialEU
	case ZeroAverageOverTime:
		offset = (-float64(hdr.DataZeroLevelADC) * scaleMV / hdr.ScaleFactorEU / excitation) + meta.InitialEU
	default:
		offset = meta.InitialEU
	}

	return Calibration{
		Scale:  scaleMV / hdr.ScaleFactorEU / excitation,
		Offset: offset,
	}
}

// Apply converts one raw ADC sample to engineering units. The narrowing to
// float32 happens only at the final step.
func (c Calibration) Apply(adc int16) float32 {
	return float32(float64(adc)*c.Scale + c.Offset)
}
