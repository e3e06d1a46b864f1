// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/opendaq/dts2uff/conversion"
	"github.com/opendaq/dts2uff/dts"
)

func newConvertTool() mcp.Tool {
	return mcp.NewTool("convert_dts_to_uff",
		mcp.WithDescription("Convert a DTS test folder into a UFF Type 58 file."),
		mcp.WithString("input_dir", mcp.Required(),
			mcp.Description("Absolute path to the DTS export directory containing .dts/.chn files. Pass a directory path, not an individual file.")),
		mcp.WithString("tracks_file", mcp.Required(),
			mcp.Description("Absolute path to the text file with track names (newline or comma separated). Pass a file path, not a directory.")),
		mcp.WithString("output_path", mcp.Required(),
			mcp.Description("Absolute path (including filename) where the generated .uff file should be written. The parent directory must already exist.")),
		mcp.WithString("format",
			mcp.Description("Output format. Defaults to ascii."),
			mcp.Enum("ascii", "binary")),
		mcp.WithString("track_list_output",
			mcp.Description("Optional comma-separated list of track names to write, in the requested order.")),
		mcp.WithString("slice",
			mcp.Description("Optional sample range to export for each track, written as start:end. Zero-based, start inclusive, end exclusive, no step values. The same slice applies to every track; requests outside the available samples return an error instead of clamping. Omit to export the full range.")),
	)
}

func handleConvert(logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inputDir, err := requireNonEmpty(req, "input_dir")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tracksFile, err := requireNonEmpty(req, "tracks_file")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		outputPath, err := requireNonEmpty(req, "output_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		format, err := conversion.ParseOutputFormat(req.GetString("format", "ascii"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := conversion.Options{Format: format, Logger: logger}

		if raw := strings.TrimSpace(req.GetString("track_list_output", "")); raw != "" {
			filter := conversion.SplitTrackNames(raw)
			if len(filter) == 0 {
				return mcp.NewToolResultError("at least one track name must be provided"), nil
			}
			opts.TrackFilter = filter
		}
		if raw := strings.TrimSpace(req.GetString("slice", "")); raw != "" {
			slice, err := conversion.ParseSampleSlice(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.Slice = &slice
		}

		report, err := runInBackground(func() (*conversion.Report, error) {
			return conversion.Convert(ctx, conversion.Params{
				InputDir:   inputDir,
				TracksPath: tracksFile,
				OutputPath: outputPath,
			}, opts)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(convertSummary(inputDir, tracksFile, outputPath, format, opts, report)), nil
	}
}

func convertSummary(inputDir, tracksFile, outputPath string, format conversion.OutputFormat, opts conversion.Options, report *conversion.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **DTS to UFF conversion succeeded**\n\n")
	fmt.Fprintf(&b, "- **Input directory:** `%s`\n", inputDir)
	fmt.Fprintf(&b, "- **Track names file:** `%s`\n", tracksFile)
	fmt.Fprintf(&b, "- **Output file:** `%s`\n", outputPath)
	fmt.Fprintf(&b, "- **Format:** `%s`\n", format)
	fmt.Fprintf(&b, "- **Channels written:** %d\n", len(report.ProcessedTrackNames))
	fmt.Fprintf(&b, "- **Track names provided:** %d\n", report.TrackNameCount)

	if len(opts.TrackFilter) > 0 {
		fmt.Fprintf(&b, "- **Requested tracks:** %s\n", strings.Join(opts.TrackFilter, ", "))
	} else {
		fmt.Fprintf(&b, "- **Requested tracks:** All\n")
	}
	if opts.Slice != nil {
		fmt.Fprintf(&b, "- **Sample slice:** `%s`\n", opts.Slice)
	} else {
		fmt.Fprintf(&b, "- **Sample slice:** full range\n")
	}

	if report.TrackNameCount != report.ChannelCount {
		fmt.Fprintf(&b, "\n⚠️ Track name count (%d) differed from channels detected (%d).\n",
			report.TrackNameCount, report.ChannelCount)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "\n**Warnings:**\n")
		for _, warning := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	if len(report.ProcessedTrackNames) > 0 {
		fmt.Fprintf(&b, "\n**Track preview:**\n")
		for i, name := range report.ProcessedTrackNames {
			if i == 5 {
				fmt.Fprintf(&b, "… and %d more track(s).\n", len(report.ProcessedTrackNames)-5)
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
	}

	return b.String()
}

func newListTracksTool() mcp.Tool {
	return mcp.NewTool("list_dts_tracks",
		mcp.WithDescription("List metadata for each track inside a DTS export directory."),
		mcp.WithString("input_dir", mcp.Required(),
			mcp.Description("Absolute path to the DTS export directory containing .dts/.chn files. Pass a directory path, not an individual file.")),
		mcp.WithString("tracks_file",
			mcp.Description("Optional absolute path to the text file with track names used for UFF export ordering.")),
		mcp.WithNumber("page",
			mcp.Description("1-based page of tracks to return. Defaults to 1.")),
		mcp.WithNumber("page_size",
			mcp.Description("Number of tracks per page. Omit or 0 to return every track.")),
	)
}

type listedTrack struct {
	Channel     int            `json:"channel"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	SamplingHz  uint64         `json:"samplingRateHz"`
	Sensitivity *float64       `json:"sensitivity_mV_per_g,omitempty"`
	Serial      string         `json:"serial,omitempty"`
	Unit        string         `json:"unit"`
	Extras      map[string]any `json:"extras,omitempty"`
}

type listedTracks struct {
	Source   string        `json:"source"`
	Count    int           `json:"count"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize,omitempty"`
	Tracks   []listedTrack `json:"tracks"`
	Warnings []string      `json:"warnings,omitempty"`
}

func handleListTracks(logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inputDir, err := requireNonEmpty(req, "input_dir")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tracksFile := strings.TrimSpace(req.GetString("tracks_file", ""))
		if req.GetString("tracks_file", "") != "" && tracksFile == "" {
			return mcp.NewToolResultError("`tracks_file` cannot be empty when provided"), nil
		}

		page := req.GetInt("page", 1)
		if page < 1 {
			return mcp.NewToolResultError("`page` must be at least 1"), nil
		}
		pageSize := req.GetInt("page_size", 0)
		if pageSize < 0 {
			return mcp.NewToolResultError("`page_size` cannot be negative"), nil
		}

		type listing struct {
			metadata   []dts.TrackMetadata
			trackNames []string
		}
		result, err := runInBackground(func() (listing, error) {
			reader, err := dts.NewReader(inputDir)
			if err != nil {
				return listing{}, err
			}
			out := listing{metadata: reader.TrackMetadata()}
			if tracksFile != "" {
				names, err := conversion.LoadTrackNames(tracksFile)
				if err != nil {
					return listing{}, err
				}
				if len(names) == 0 {
					return listing{}, fmt.Errorf("track name file '%s' did not contain any usable entries", tracksFile)
				}
				out.trackNames = names
			}
			return out, nil
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		logger.Info("listed tracks", zap.String("input_dir", inputDir), zap.Int("count", len(result.metadata)))

		tracks, warnings := describeTracks(result.metadata, result.trackNames)
		paged := pageTracks(tracks, page, pageSize)

		summary := fmt.Sprintf("Track metadata for '%s': %d track%s.", inputDir,
			len(tracks), plural(len(tracks)))
		if tracksFile != "" {
			summary += fmt.Sprintf(" Track names loaded from '%s'.", tracksFile)
		}
		if pageSize > 0 {
			summary += fmt.Sprintf(" Showing page %d (%d per page, %d on this page).",
				page, pageSize, len(paged))
		}
		if len(warnings) > 0 {
			summary += " Warnings: " + strings.Join(warnings, "; ")
		}

		return mcp.NewToolResultStructured(listedTracks{
			Source:   inputDir,
			Count:    len(paged),
			Total:    len(tracks),
			Page:     page,
			PageSize: pageSize,
			Tracks:   paged,
			Warnings: warnings,
		}, summary), nil
	}
}

// pageTracks windows the listing. A zero page size disables paging and
// returns everything on page 1.
func pageTracks(tracks []listedTrack, page, pageSize int) []listedTrack {
	if pageSize <= 0 {
		if page > 1 {
			return nil
		}
		return tracks
	}
	start := (page - 1) * pageSize
	if start >= len(tracks) {
		return nil
	}
	end := start + pageSize
	if end > len(tracks) {
		end = len(tracks)
	}
	return tracks[start:end]
}

// describeTracks resolves display names and units for the listing. Units
// other than "g" are reported as "g" with the raw unit preserved in extras;
// the accompanying warnings are sorted and de-duplicated.
func describeTracks(metadata []dts.TrackMetadata, trackNames []string) ([]listedTrack, []string) {
	var warnings []string
	if trackNames != nil && len(trackNames) != len(metadata) {
		warnings = append(warnings, fmt.Sprintf(
			"Track name count (%d) differs from metadata entries (%d).",
			len(trackNames), len(metadata)))
	}

	missingDescriptions := 0
	missingUnits := 0
	unsupportedUnits := map[string]int{}

	tracks := make([]listedTrack, len(metadata))
	for i, meta := range metadata {
		name := ""
		if i < len(trackNames) {
			name = strings.TrimSpace(trackNames[i])
		}
		if name == "" {
			name = strings.TrimSpace(meta.Name)
		}
		if name == "" {
			name = fmt.Sprintf("Track %d", i+1)
		}

		track := listedTrack{
			Channel:     i + 1,
			Name:        name,
			Description: strings.TrimSpace(meta.Description),
			SamplingHz:  uint64(math.Round(meta.SamplingRate)),
			Serial:      strings.TrimSpace(meta.SerialNumber),
			Extras:      map[string]any{},
		}
		if !math.IsNaN(meta.Sensitivity) && !math.IsInf(meta.Sensitivity, 0) {
			sensitivity := meta.Sensitivity
			track.Sensitivity = &sensitivity
		}
		if track.Description == "" {
			missingDescriptions++
			track.Extras["descriptionPresent"] = false
		}

		switch rawUnit := strings.TrimSpace(meta.Unit); {
		case rawUnit == "":
			missingUnits++
			track.Unit = "g"
			track.Extras["unitDefaultedToG"] = true
		case strings.EqualFold(rawUnit, "g"):
			track.Unit = "g"
		default:
			unsupportedUnits[rawUnit]++
			track.Unit = "g"
			track.Extras["rawUnit"] = rawUnit
			track.Extras["unitDefaultedToG"] = true
		}

		if len(track.Extras) == 0 {
			track.Extras = nil
		}
		tracks[i] = track
	}

	if missingDescriptions > 0 {
		warnings = append(warnings, fmt.Sprintf("%d track%s missing descriptions.",
			missingDescriptions, plural(missingDescriptions)))
	}
	if missingUnits > 0 {
		warnings = append(warnings, fmt.Sprintf("%d track%s missing units; defaulted to 'g'.",
			missingUnits, plural(missingUnits)))
	}
	if len(unsupportedUnits) > 0 {
		total := 0
		details := make([]string, 0, len(unsupportedUnits))
		for unit, count := range unsupportedUnits {
			total += count
			details = append(details, fmt.Sprintf("%d×%s", count, unit))
		}
		sort.Strings(details)
		warnings = append(warnings, fmt.Sprintf("%d track%s used unsupported units: %s (reported as 'g').",
			total, plural(total), strings.Join(details, ", ")))
	}

	sort.Strings(warnings)
	out := warnings[:0]
	for i, w := range warnings {
		if i == 0 || w != warnings[i-1] {
			out = append(out, w)
		}
	}
	return tracks, out
}

func requireNonEmpty(req mcp.CallToolRequest, key string) (string, error) {
	value, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("`%s` cannot be empty", key)
	}
	return strings.TrimSpace(value), nil
}

// runInBackground offloads f so a panic in the work surfaces as a distinct
// infrastructure error instead of tearing down the request handler.
func runInBackground[T any](f func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- outcome{zero, fmt.Errorf("background task failed: %v", r)}
			}
		}()
		value, err := f()
		ch <- outcome{value, err}
	}()
	result := <-ch
	return result.value, result.err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
