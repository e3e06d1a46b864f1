// SPDX-License-Identifier: MPL-2.0

package dts

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// File extensions of a DTS export directory.
const (
	metadataExt = ".dts"
	channelExt  = ".chn"
)

// Reader pairs the channels described by a DTS metadata file with the binary
// sample files next to it and exposes calibrated, random-access track reads.
//
// Channel files are matched to metadata entries by position: metadata sorted
// by absolute display order against files in natural filename order. The
// counts must agree or construction fails.
type Reader struct {
	channelFiles   []string
	metadata       []ChannelMetadata
	headers        []*ChannelHeader
	minSampleCount uint64
}

// NewReader scans dir for exactly one metadata file and all channel files,
// parses everything, and validates consistency.
func NewReader(dir string) (*Reader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading DTS directory: %w", err)
	}

	var metadataPath string
	var channelFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case metadataExt:
			if metadataPath == "" {
				metadataPath = filepath.Join(dir, entry.Name())
			}
		case channelExt:
			channelFiles = append(channelFiles, filepath.Join(dir, entry.Name()))
		}
	}

	if metadataPath == "" {
		return nil, &FormatError{Path: dir, Reason: fmt.Sprintf("no '%s' metadata file found in directory", metadataExt)}
	}

	// Channel filenames are not zero-padded, so numeric runs must compare
	// numerically for file order to match channel order.
	sort.Slice(channelFiles, func(i, j int) bool {
		return natural.Less(filepath.Base(channelFiles[i]), filepath.Base(channelFiles[j]))
	})

	raw, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("error reading DTS metadata file: %w", err)
	}
	metadata, err := ParseMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", metadataPath, err)
	}

	if len(channelFiles) != len(metadata) {
		return nil, &FormatError{
			Path: dir,
			Reason: fmt.Sprintf("mismatch between channel count in %s file (%d) and number of %s files (%d)",
				metadataExt, len(metadata), channelExt, len(channelFiles)),
		}
	}

	headers := make([]*ChannelHeader, len(channelFiles))
	minSampleCount := ^uint64(0)
	for i, path := range channelFiles {
		hdr, err := ReadChannelHeader(path)
		if err != nil {
			return nil, err
		}
		if hdr.SampleCount < minSampleCount {
			minSampleCount = hdr.SampleCount
		}
		headers[i] = hdr
	}

	return &Reader{
		channelFiles:   channelFiles,
		metadata:       metadata,
		headers:        headers,
		minSampleCount: minSampleCount,
	}, nil
}

// ChannelCount returns the number of channels in the export.
func (r *Reader) ChannelCount() int {
	return len(r.channelFiles)
}

// MinSampleCount returns the shortest sample count across all channels.
// Every track read is truncated to this length so channels stay aligned.
func (r *Reader) MinSampleCount() uint64 {
	return r.minSampleCount
}

// TrackMetadata returns a read-only per-channel summary without touching any
// sample data. The name defaults to the description when no separate name is
// recorded.
func (r *Reader) TrackMetadata() []TrackMetadata {
	tracks := make([]TrackMetadata, len(r.metadata))
	for i, meta := range r.metadata {
		tracks[i] = TrackMetadata{
			Name:         meta.Description,
			Description:  meta.Description,
			SamplingRate: r.headers[i].SampleRateHz,
			Sensitivity:  meta.Sensitivity,
			SerialNumber: meta.SerialNumber,
			Unit:         meta.Unit,
		}
	}
	return tracks
}

// ReadTrack reads and calibrates the samples of a single channel. All tracks
// are read at the common truncated length regardless of their own sample
// count.
func (r *Reader) ReadTrack(index int) (*ChannelData, error) {
	if index < 0 || index >= r.ChannelCount() {
		return nil, fmt.Errorf("track index %d: %w", index, ErrTrackOutOfBounds)
	}

	meta := &r.metadata[index]
	hdr := r.headers[index]
	path := r.channelFiles[index]

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening channel file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(hdr.SampleDataOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%s: error seeking to sample data: %w", path, err)
	}

	buf := make([]byte, r.minSampleCount*2)
	if _, err := io.ReadFull(bufio.NewReader(f), buf); err != nil {
		return nil, &FormatError{Path: path, Reason: "sample data truncated", Err: err}
	}

	cal := NewCalibration(hdr, meta)
	series := make([]float32, r.minSampleCount)
	for i := range series {
		adc := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		series[i] = cal.Apply(adc)
	}

	return &ChannelData{
		TimeSeries:   series,
		SampleRateHz: hdr.SampleRateHz,
		Unit:         meta.Unit,
	}, nil
}
