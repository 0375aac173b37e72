package finder

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/segment"
)

// CommandRunner runs ffmpeg and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, args []string, onProgress ffmpeg.ProgressFunc) (string, error)
}

// SilenceOptions tunes silence detection.
type SilenceOptions struct {
	Window ffmpeg.Window
	// MinSilence is the shortest gap, in seconds, that counts as silence.
	MinSilence float64
	// ThresholdDB is the noise floor; quieter audio is silence.
	ThresholdDB float64
	OnProgress  ffmpeg.ProgressFunc
}

var (
	silenceStartPattern = regexp.MustCompile(` silence_start: ([0-9]+\.?[0-9]*)$`)
	silenceEndPattern   = regexp.MustCompile(` silence_end: ([0-9]+\.?[0-9]*) `)
	totalTimePattern    = regexp.MustCompile(`size=\S+ time=([0-9]{2}:[0-9]{2}:[0-9.]{5}) bitrate=`)
)

// FindSilence returns the non-silent stretches of path inside the window,
// numbered from 0. A file without detected silence yields an empty list.
func FindSilence(ctx context.Context, runner CommandRunner, path string, opts SilenceOptions) ([]segment.Segment, error) {
	args := ffmpeg.SilenceDetectArgs(path, opts.Window, opts.MinSilence, opts.ThresholdDB)
	output, err := runner.Run(ctx, args, opts.OnProgress)
	if err != nil {
		return nil, err
	}

	spans := parseSilence(strings.Split(output, "\n"), opts.Window)
	out := make([]segment.Segment, 0, len(spans))
	for i, span := range spans {
		out = append(out, segment.NewBacked(i, "", span[0], span[1], path, span[0], span[1]))
	}
	return out, nil
}

// parseSilence converts silencedetect output into [start, end] pairs of
// non-silence. Reported timestamps are relative to the window start.
//
// Silence ending opens a segment and silence starting closes one. A file
// that begins with sound gets a segment opening at the window start; one
// that ends with sound is closed at the decoded duration, or the window end
// when ffmpeg printed no final stats.
func parseSilence(lines []string, w ffmpeg.Window) [][2]float64 {
	offset := w.Start
	limit := -1.0
	if w.End > w.Start {
		limit = w.End
	}
	duration := -1.0

	var starts, ends []float64
	for _, line := range lines {
		line = strings.TrimRight(line, "\r ")
		if m := silenceStartPattern.FindStringSubmatch(line); m != nil {
			ts := offset + parseNumber(m[1])
			if ts > offset {
				ends = append(ends, ts)
				if len(starts) == 0 {
					starts = append(starts, offset)
				}
			}
			continue
		}
		if m := silenceEndPattern.FindStringSubmatch(line); m != nil {
			ts := offset + parseNumber(m[1])
			if (limit < 0 || ts < limit) && (duration < 0 || ts < duration) {
				starts = append(starts, ts)
			}
		}
		if m := totalTimePattern.FindStringSubmatch(line); m != nil {
			if seconds, err := ffmpeg.ParseClock(m[1]); err == nil {
				duration = offset + seconds
			}
		}
	}

	if len(starts) > len(ends) {
		switch {
		case duration >= 0:
			ends = append(ends, duration)
		case limit >= 0:
			ends = append(ends, limit)
		}
	}

	n := min(len(starts), len(ends))
	spans := make([][2]float64, 0, n)
	for i := range n {
		// Trailing silence may report an end at EOF, opening an empty span.
		if ends[i] <= starts[i] {
			continue
		}
		spans = append(spans, [2]float64{starts[i], ends[i]})
	}
	return spans
}

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
