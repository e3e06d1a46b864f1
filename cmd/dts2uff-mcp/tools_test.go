// SPDX-License-Identifier: MPL-2.0

package main

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opendaq/dts2uff/dts"
)

func trackMeta(description, unit string) dts.TrackMetadata {
	return dts.TrackMetadata{
		Name:         description,
		Description:  description,
		SamplingRate: 1000.0,
		Sensitivity:  math.NaN(),
		Unit:         unit,
	}
}

func TestDescribeTracksNameFallbacks(t *testing.T) {
	metadata := []dts.TrackMetadata{
		trackMeta("IEPE 100 mV/g", "g"),
		trackMeta("", "g"),
		trackMeta("ignored by list entry", "g"),
	}

	tracks, _ := describeTracks(metadata, []string{"", "", "Accel Z"})
	require.Len(t, tracks, 3)

	// Empty list entry falls back to the metadata name, then to a
	// positional label when both are empty.
	require.Equal(t, "IEPE 100 mV/g", tracks[0].Name)
	require.Equal(t, "Track 2", tracks[1].Name)
	require.Equal(t, "Accel Z", tracks[2].Name)

	require.Equal(t, 1, tracks[0].Channel)
	require.Nil(t, tracks[0].Extras)
	require.Equal(t, false, tracks[1].Extras["descriptionPresent"])
}

func TestDescribeTracksUnitHandling(t *testing.T) {
	metadata := []dts.TrackMetadata{
		trackMeta("a", "g"),
		trackMeta("b", ""),
		trackMeta("c", "mV"),
		trackMeta("d", "G"),
	}

	tracks, warnings := describeTracks(metadata, nil)
	for _, track := range tracks {
		require.Equal(t, "g", track.Unit)
	}

	require.Nil(t, tracks[0].Extras)
	require.Equal(t, true, tracks[1].Extras["unitDefaultedToG"])
	require.NotContains(t, tracks[1].Extras, "rawUnit")
	require.Equal(t, "mV", tracks[2].Extras["rawUnit"])
	require.Equal(t, true, tracks[2].Extras["unitDefaultedToG"])
	// "G" matches case-insensitively and is not reported as unsupported.
	require.Nil(t, tracks[3].Extras)

	require.Equal(t, []string{
		"1 track missing units; defaulted to 'g'.",
		"1 track used unsupported units: 1×mV (reported as 'g').",
	}, warnings)
}

func TestDescribeTracksNameCountMismatch(t *testing.T) {
	metadata := []dts.TrackMetadata{
		trackMeta("a", "g"),
		trackMeta("b", "g"),
	}

	tracks, warnings := describeTracks(metadata, []string{"Only One"})
	require.Len(t, tracks, 2)
	require.Equal(t, "Only One", tracks[0].Name)
	require.Equal(t, "b", tracks[1].Name)
	require.Contains(t, warnings,
		"Track name count (1) differs from metadata entries (2).")
}

func TestDescribeTracksWarningsSorted(t *testing.T) {
	metadata := []dts.TrackMetadata{
		trackMeta("", ""),
		trackMeta("", "mV"),
		trackMeta("named", "Pa"),
	}

	_, warnings := describeTracks(metadata, []string{"x"})
	require.True(t, sort.StringsAreSorted(warnings))
	require.Contains(t, warnings, "2 tracks missing descriptions.")
	require.Contains(t, warnings,
		"2 tracks used unsupported units: 1×Pa, 1×mV (reported as 'g').")
}

func TestDescribeTracksSensitivity(t *testing.T) {
	meta := trackMeta("a", "g")
	meta.Sensitivity = 98.5176059
	meta.SerialNumber = "PCB_B34_xx"

	tracks, _ := describeTracks([]dts.TrackMetadata{meta, trackMeta("b", "g")}, nil)

	require.NotNil(t, tracks[0].Sensitivity)
	require.InDelta(t, 98.5176059, *tracks[0].Sensitivity, 1e-9)
	require.Equal(t, "PCB_B34_xx", tracks[0].Serial)
	// NaN sensitivity means absent.
	require.Nil(t, tracks[1].Sensitivity)
}

func TestPageTracks(t *testing.T) {
	tracks := []listedTrack{{Channel: 1}, {Channel: 2}, {Channel: 3}}

	require.Equal(t, tracks, pageTracks(tracks, 1, 0))
	require.Empty(t, pageTracks(tracks, 2, 0))
	require.Equal(t, tracks[:2], pageTracks(tracks, 1, 2))
	require.Equal(t, tracks[2:], pageTracks(tracks, 2, 2))
	require.Empty(t, pageTracks(tracks, 3, 2))
}
