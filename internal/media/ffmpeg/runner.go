package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"m4bind/internal/logging"
	"m4bind/internal/services"
)

// ProgressFunc receives completion percentages in the range [0, 100].
type ProgressFunc func(percent float64)

// Runner executes ffmpeg commands.
type Runner struct {
	Binary string
	Logger *slog.Logger
}

// NewRunner returns a Runner for binary ("" means ffmpeg on PATH).
func NewRunner(binary string, logger *slog.Logger) *Runner {
	return &Runner{Binary: binary, Logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

const failureTailLines = 8

// Run executes ffmpeg with args and returns its combined output. When
// onProgress is non-nil, progress reporting is enabled: onProgress receives 0
// before the command starts, non-decreasing percentages while it runs, and
// 100 after a clean exit. A non-zero exit is returned as an error wrapping
// services.ErrExternalTool carrying the tail of the output.
func (r *Runner) Run(ctx context.Context, args []string, onProgress ProgressFunc) (string, error) {
	binary := "ffmpeg"
	logger := logging.NewNop()
	if r != nil {
		if strings.TrimSpace(r.Binary) != "" {
			binary = strings.TrimSpace(r.Binary)
		}
		if r.Logger != nil {
			logger = r.Logger
		}
	}

	fullArgs := args
	if onProgress != nil {
		fullArgs = append([]string{"-progress", "-", "-nostats"}, args...)
	}
	logger.Debug("running ffmpeg", logging.String("args", strings.Join(fullArgs, " ")))

	cmd := exec.CommandContext(ctx, binary, fullArgs...)
	reader, writer := io.Pipe()
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Start(); err != nil {
		_ = writer.Close()
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "start", binary, err)
	}
	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = writer.Close()
		waitErr <- err
	}()

	if onProgress != nil {
		onProgress(0)
	}
	tracker := newProgressTracker(args)

	var output bytes.Buffer
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		output.WriteString(line)
		output.WriteByte('\n')
		if onProgress != nil {
			if percent, ok := tracker.observe(line); ok {
				onProgress(percent)
			}
		}
	}
	// Keep draining so ffmpeg never blocks on a full pipe after a scan error.
	_, _ = io.Copy(io.Discard, reader)

	err := <-waitErr
	text := output.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return text, fmt.Errorf("%w: ffmpeg exited with status %d: %s", services.ErrExternalTool, exitErr.ExitCode(), tail(text, failureTailLines))
		}
		return text, services.Wrap(services.ErrExternalTool, "ffmpeg", "wait", binary, err)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		logger.Debug("ffmpeg output truncated", logging.Error(scanErr))
	}
	if onProgress != nil {
		onProgress(100)
	}
	return text, nil
}

// scanLines splits on \n and on the bare \r ffmpeg uses to redraw status lines.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func tail(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
