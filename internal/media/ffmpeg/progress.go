package ffmpeg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	durationPattern  = regexp.MustCompile(`Duration: (\d+:\d{2}:\d{2}(?:\.\d+)?)`)
	outTimePattern   = regexp.MustCompile(`^out_time=(\d+:\d{2}:\d{2}(?:\.\d+)?)`)
	statsTimePattern = regexp.MustCompile(`(?:^|\s)time=(\d+:\d{2}:\d{2}(?:\.\d+)?)`)
)

// ParseClock converts an ffmpeg HH:MM:SS[.frac] timestamp into seconds.
func ParseClock(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM:SS", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// LastStatsTime returns the final time=HH:MM:SS.xx marker in ffmpeg's
// statistics output, which for a full decode is the decoded duration.
func LastStatsTime(output string) (float64, bool) {
	matches := statsTimePattern.FindAllStringSubmatch(output, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if seconds, err := ParseClock(matches[i][1]); err == nil {
			return seconds, true
		}
	}
	return 0, false
}

// progressTracker turns -progress output into percentages. The total comes
// from an explicit -t in the arguments when present, else from the first
// Duration line ffmpeg prints.
type progressTracker struct {
	total float64
	last  float64
}

func newProgressTracker(args []string) *progressTracker {
	t := &progressTracker{}
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-t" {
			if d, err := strconv.ParseFloat(args[i+1], 64); err == nil && d > 0 {
				t.total = d
			}
		}
	}
	return t
}

func (t *progressTracker) observe(line string) (float64, bool) {
	if t.total <= 0 {
		if m := durationPattern.FindStringSubmatch(line); m != nil {
			if d, err := ParseClock(m[1]); err == nil && d > 0 {
				t.total = d
			}
			return 0, false
		}
	}
	if t.total <= 0 {
		return 0, false
	}
	m := outTimePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	elapsed, err := ParseClock(m[1])
	if err != nil {
		return 0, false
	}
	percent := elapsed / t.total * 100
	if percent > 100 {
		percent = 100
	}
	if percent < t.last {
		return 0, false
	}
	t.last = percent
	return percent, true
}
