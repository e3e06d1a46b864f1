// SPDX-License-Identifier: MPL-2.0

// Command dts2uff converts a DTS test folder into a UFF Type 58 file.
package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/opendaq/dts2uff/conversion"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputDir   string
		tracksPath string
		outputPath string
		formatName string
		sliceSpec  string
		trackList  string
		workers    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "dts2uff",
		Short:         "Convert a DTS test folder to a UFF (Universal File Format) Type 58 file",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, inputDir, tracksPath, outputPath,
				viper.GetString("format"), sliceSpec, trackList, viper.GetInt("workers"), verbose)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "directory containing the DTS files (.dts, .chn)")
	cmd.Flags().StringVarP(&tracksPath, "tracks", "t", "", "text file with track names, comma or newline separated")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output UFF file path")
	cmd.Flags().StringVarP(&formatName, "format", "f", "ascii", "output format: ascii or binary")
	cmd.Flags().StringVar(&sliceSpec, "slice", "", "sample range to export per track, as start:end (end exclusive)")
	cmd.Flags().StringVar(&trackList, "track-list", "", "comma-separated track names to export, in the requested order")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel extraction workers (0 = one per CPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.CheckErr(cmd.MarkFlagRequired("input-dir"))
	cobra.CheckErr(cmd.MarkFlagRequired("tracks"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	// Flags can also come from the environment, e.g. DTS2UFF_FORMAT=binary.
	viper.SetEnvPrefix("DTS2UFF")
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlag("format", cmd.Flags().Lookup("format")))
	cobra.CheckErr(viper.BindPFlag("workers", cmd.Flags().Lookup("workers")))

	return cmd
}

func run(cmd *cobra.Command, inputDir, tracksPath, outputPath, formatName, sliceSpec, trackList string, workers int, verbose bool) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failures are unactionable

	format, err := conversion.ParseOutputFormat(formatName)
	if err != nil {
		return err
	}

	opts := conversion.Options{
		Format:  format,
		Workers: workers,
		Logger:  logger,
	}

	if sliceSpec != "" {
		slice, err := conversion.ParseSampleSlice(sliceSpec)
		if err != nil {
			return err
		}
		opts.Slice = &slice
	}
	if trackList != "" {
		opts.TrackFilter = conversion.SplitTrackNames(trackList)
	}

	var bar *progressbar.ProgressBar
	opts.OnProgress = func(completed, total int, trackName string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Converting"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe("Processing " + trackName)
		_ = bar.Set(completed)
	}

	report, err := conversion.Convert(cmd.Context(), conversion.Params{
		InputDir:   inputDir,
		TracksPath: tracksPath,
		OutputPath: outputPath,
	}, opts)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Printf("Wrote %d track(s) to %s (%s format).\n",
		len(report.ProcessedTrackNames), outputPath, format)
	fmt.Printf("Found %d track name(s) for %d channel(s).\n",
		report.TrackNameCount, report.ChannelCount)
	for _, warning := range report.Warnings {
		fmt.Println("Warning:", warning)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}
