package segment

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"m4bind/internal/logging"
	"m4bind/internal/services"
)

var labelPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+(\d+\.?\d*)\s+(.*?)\s*$`)

// ParseLabels reads Audacity label lines (start, end, title separated by
// whitespace) into unbacked segments. Each label ends where the next one
// begins; the last keeps its own end. Lines that do not parse are logged and
// skipped.
func ParseLabels(r io.Reader, logger *slog.Logger) ([]Segment, error) {
	logger = logging.NewComponentLogger(logger, "labels")

	type label struct {
		start, end float64
		title      string
	}
	var labels []label

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		match := labelPattern.FindStringSubmatch(line)
		if match == nil {
			logger.Warn("could not parse label", logging.Int("line", lineNo), logging.String("text", line))
			continue
		}
		start, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			logger.Warn("could not parse label start", logging.Int("line", lineNo), logging.Error(err))
			continue
		}
		end, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			logger.Warn("could not parse label end", logging.Int("line", lineNo), logging.Error(err))
			continue
		}
		labels = append(labels, label{start: start, end: end, title: match[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, services.Wrap(services.ErrPrecondition, "labels", "parse", "no labels found", nil)
	}

	segs := make([]Segment, 0, len(labels))
	for i, l := range labels {
		end := l.end
		if i+1 < len(labels) {
			end = labels[i+1].start
		}
		segs = append(segs, New(i, l.title, l.start, end))
	}
	return segs, nil
}

// WriteLabels writes segs as Audacity label lines.
func WriteLabels(w io.Writer, segs []Segment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		if _, err := fmt.Fprintf(bw, "%f\t%f\t%s\n", s.start, s.end, s.title); err != nil {
			return fmt.Errorf("write label: %w", err)
		}
	}
	return bw.Flush()
}
