package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"m4bind/internal/cover"
	"m4bind/internal/finder"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/segment"
	"m4bind/internal/services"
	"m4bind/internal/splitter"
)

type splitOptions struct {
	start            float64
	end              float64
	minimum          float64
	outputDir        string
	pattern          string
	silenceThreshold float64
	silenceDuration  float64
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var opts splitOptions

	cmd := &cobra.Command{
		Use:   "split <silence|chapters> <file>",
		Short: "Split a file into segments by silence or chapter marks",
		Long: "Split a file into segments. Mode \"silence\" (or \"s\") cuts at detected silence;\n" +
			"mode \"chapters\" (or \"c\") cuts at the embedded chapter marks.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("minimum-segment-time") {
				opts.minimum = cfg.Split.MinimumSegmentTime
			}
			if !flags.Changed("output-pattern") {
				opts.pattern = cfg.Split.OutputPattern
			}
			if !flags.Changed("silence-threshold") {
				opts.silenceThreshold = cfg.Split.SilenceThresholdDB
			}
			if !flags.Changed("silence-duration") {
				opts.silenceDuration = cfg.Split.SilenceDuration
			}
			return runSplit(cmd, ctx, args[0], args[1], opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64VarP(&opts.start, "start-time", "s", 0, "Start time in seconds")
	flags.Float64VarP(&opts.end, "end-time", "e", 0, "End time in seconds (default end of file)")
	flags.Float64VarP(&opts.minimum, "minimum-segment-time", "m", 1.0, "Smallest segment to keep, in seconds")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory to place output")
	flags.StringVarP(&opts.pattern, "output-pattern", "p", "", "Output file name template; use {{.Index}} and {{.Title}}")
	flags.Float64Var(&opts.silenceThreshold, "silence-threshold", -35, "Silence threshold in dB")
	flags.Float64Var(&opts.silenceDuration, "silence-duration", 3.0, "Shortest silence to split on, in seconds")
	return cmd
}

func runSplit(cmd *cobra.Command, ctx *commandContext, mode, input string, opts splitOptions) error {
	pattern, err := splitter.ParsePattern(opts.pattern)
	if err != nil {
		return err
	}
	_, logger, tools, err := ctx.session()
	if err != nil {
		return err
	}

	window := ffmpeg.Window{Start: opts.start, End: opts.end}
	var segs []segment.Segment
	switch strings.ToLower(mode) {
	case "s", "silence", "silences":
		segs, err = finder.FindSilence(cmd.Context(), tools.FFmpeg, input, finder.SilenceOptions{
			Window:      window,
			MinSilence:  opts.silenceDuration,
			ThresholdDB: opts.silenceThreshold,
		})
	case "c", "chapter", "chapters":
		segs, err = finder.FindChapters(cmd.Context(), tools.Prober, input, window)
	default:
		return services.Wrap(services.ErrValidation, "split", "mode", fmt.Sprintf("unexpected mode %q", mode), nil)
	}
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return services.Wrap(services.ErrPrecondition, "split", "find", "no segments found", nil)
	}
	segs = splitter.DropShort(segs, opts.minimum)
	if len(segs) == 0 {
		return services.Wrap(services.ErrPrecondition, "split", "find", "not enough segments found", nil)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d segments\n", len(segs))
	s := splitter.New(tools.Tasks, cover.NewService(tools.FFmpeg, logger), logger)
	outputs, err := s.Split(cmd.Context(), input, opts.outputDir, segs, pattern)
	if err != nil {
		return err
	}
	for _, path := range outputs {
		fmt.Fprintln(out, path)
	}
	return nil
}
