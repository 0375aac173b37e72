package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSoftSkip marks an input that was skipped with a warning (unparsable or
	// non-audio file during a scan).
	ErrSoftSkip = errors.New("skipped input")
	// ErrDurationUnavailable is returned when neither metadata nor a full
	// decode yields a usable duration.
	ErrDurationUnavailable = errors.New("duration unavailable")
	// ErrPrecondition marks an operation that refused to run: empty segment
	// list, non-backed segment, no chapters.
	ErrPrecondition = errors.New("precondition failed")
	// ErrExternalTool marks a non-zero exit from ffmpeg or ffprobe. Fatal for
	// the bind that triggered it.
	ErrExternalTool = errors.New("external tool error")
	// ErrTaskFailure marks a single parallel job failure. Isolated from its
	// siblings.
	ErrTaskFailure = errors.New("task failed")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort the surrounding operation. Soft
// skips and isolated task failures are recoverable; everything else is not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrSoftSkip), errors.Is(err, ErrDurationUnavailable), errors.Is(err, ErrTaskFailure):
		return false
	default:
		return true
	}
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failure"
	}
	return strings.Join(parts, ": ")
}
