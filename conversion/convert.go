// SPDX-License-Identifier: MPL-2.0

// Package conversion orchestrates the DTS-to-UFF conversion: it plans which
// channels to export, extracts and calibrates them in parallel, and streams
// the Type-58 blocks to a single output file in a deterministic order.
package conversion

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opendaq/dts2uff/dts"
	"github.com/opendaq/dts2uff/uff"
)

// Params are the required inputs of one conversion.
type Params struct {
	InputDir   string // directory holding the .dts metadata and .chn files
	TracksPath string // plain-text track-name file, comma or newline separated
	OutputPath string // destination UFF file, truncated before writing
}

// Options tune one conversion. The zero value converts every channel in
// ASCII format with one worker per CPU and no logging.
type Options struct {
	Format OutputFormat
	// Slice restricts every exported track to [Start, End); nil exports the
	// full (truncated) range.
	Slice *SampleSlice
	// TrackFilter lists the track names to export, in the requested output
	// order. Empty means all channels in channel order.
	TrackFilter []string
	// Workers bounds parallel extraction; <= 0 means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
	// OnProgress, when set, is invoked after each channel block is written,
	// in output order.
	OnProgress func(completed, total int, trackName string)
}

// Report summarizes a completed conversion.
type Report struct {
	ChannelCount        int      // channels present in the input directory
	TrackNameCount      int      // entries in the track-name file
	ProcessedTrackNames []string // labels written, in output order
	Warnings            []string // sorted, de-duplicated
}

type planEntry struct {
	channel int
	label   string
}

type extracted struct {
	data  *dts.ChannelData
	label string
}

// Convert runs the full pipeline and returns either a complete report or a
// single descriptive error. Any channel failure aborts the whole conversion
// before the output file is opened, so no partial dataset is left behind.
func Convert(ctx context.Context, params Params, opts Options) (*Report, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	trackNames, err := LoadTrackNames(params.TracksPath)
	if err != nil {
		return nil, err
	}

	reader, err := dts.NewReader(params.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read DTS metadata from %s: %w", params.InputDir, err)
	}
	channelCount := reader.ChannelCount()

	var warnings []string
	if len(trackNames) != channelCount {
		warnings = append(warnings, fmt.Sprintf(
			"Number of track names (%d) does not match number of channels (%d)",
			len(trackNames), channelCount))
	}

	plan, planWarnings, err := buildChannelPlan(trackNames, channelCount, opts.TrackFilter)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, planWarnings...)

	if opts.Slice != nil {
		// MinSampleCount is meaningless with no channels; validate against
		// zero so the error reports the real sample availability.
		available := 0
		if channelCount > 0 {
			available = int(reader.MinSampleCount())
		}
		if err := opts.Slice.Validate(available); err != nil {
			return nil, err
		}
	}

	logger.Info("starting conversion",
		zap.String("input_dir", params.InputDir),
		zap.String("output", params.OutputPath),
		zap.Stringer("format", opts.Format),
		zap.Int("channels", channelCount),
		zap.Int("planned", len(plan)),
		zap.Int("track_names", len(trackNames)))

	results, err := extractChannels(ctx, reader, plan, opts)
	if err != nil {
		return nil, err
	}

	processed, err := writeChannels(params.OutputPath, results, opts)
	if err != nil {
		return nil, err
	}

	sort.Strings(warnings)
	warnings = dedup(warnings)
	for _, warning := range warnings {
		logger.Warn(warning)
	}

	return &Report{
		ChannelCount:        channelCount,
		TrackNameCount:      len(trackNames),
		ProcessedTrackNames: processed,
		Warnings:            warnings,
	}, nil
}

func validateParams(params Params) error {
	if strings.TrimSpace(params.InputDir) == "" {
		return &ValidationError{Field: "input directory", Reason: "path cannot be empty"}
	}
	if strings.TrimSpace(params.TracksPath) == "" {
		return &ValidationError{Field: "track name file", Reason: "path cannot be empty"}
	}
	if strings.TrimSpace(params.OutputPath) == "" {
		return &ValidationError{Field: "output path", Reason: "path cannot be empty"}
	}
	return nil
}

// buildChannelPlan decides which channels are exported and in what order.
// Without a filter the plan is every channel in channel order, labeled by
// the track-name list with Channel_<n> fallbacks. With a filter, each
// requested name claims the first unused matching entry of the track-name
// list; names that match nothing become warnings, and a filter matching
// nothing at all is an error.
func buildChannelPlan(trackNames []string, channelCount int, filter []string) ([]planEntry, []string, error) {
	if len(filter) == 0 {
		plan := make([]planEntry, channelCount)
		for i := range plan {
			plan[i] = planEntry{channel: i, label: defaultLabel(trackNames, i)}
		}
		return plan, nil, nil
	}

	used := make([]bool, len(trackNames))
	var plan []planEntry
	var warnings []string
	for _, requested := range filter {
		found := -1
		for i, name := range trackNames {
			if !used[i] && i < channelCount && name == requested {
				found = i
				break
			}
		}
		if found < 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Requested track '%s' not found in track name list", requested))
			continue
		}
		used[found] = true
		plan = append(plan, planEntry{channel: found, label: trackNames[found]})
	}

	if len(plan) == 0 {
		return nil, nil, &ValidationError{
			Field:  "track filter",
			Reason: "no requested tracks matched the track name list",
		}
	}
	return plan, warnings, nil
}

func defaultLabel(trackNames []string, channel int) string {
	if channel < len(trackNames) {
		return trackNames[channel]
	}
	return fmt.Sprintf("Channel_%d", channel+1)
}

// extractChannels reads and calibrates every planned channel with a bounded
// worker pool. Results land in per-plan slots, so output order never depends
// on completion order. A panic inside a worker is reported as an
// infrastructure failure, distinct from the extraction itself failing.
func extractChannels(ctx context.Context, reader *dts.Reader, plan []planEntry, opts Options) ([]extracted, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]extracted, len(plan))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range plan {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrBackgroundTask, r)
				}
			}()

			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := reader.ReadTrack(entry.channel)
			if err != nil {
				return fmt.Errorf("failed to read channel %d: %w", entry.channel+1, err)
			}
			if opts.Slice != nil {
				data.TimeSeries = data.TimeSeries[opts.Slice.Start:opts.Slice.End]
			}
			results[i] = extracted{data: data, label: entry.label}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeChannels streams every extracted channel to one output file,
// sequentially and in plan order. The file handle is exclusively owned here.
func writeChannels(outputPath string, results []extracted, opts Options) ([]string, error) {
	f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", outputPath, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)

	write := uff.WriteASCII
	if opts.Format == FormatBinary {
		write = uff.WriteBinary
	}

	processed := make([]string, 0, len(results))
	for i, result := range results {
		if err := write(w, result.data, result.label); err != nil {
			return nil, fmt.Errorf("failed to write UFF data for channel '%s': %w", result.label, err)
		}
		processed = append(processed, result.label)
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(results), result.label)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush writer for %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", outputPath, err)
	}
	return processed, nil
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
