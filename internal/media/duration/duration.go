// Package duration resolves how long an audio file plays, from container
// metadata or by decoding it completely.
package duration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/media/ffprobe"
	"m4bind/internal/services"
)

var (
	// ErrNoAudioStream is returned when the file cannot be probed or has no audio stream.
	ErrNoAudioStream = fmt.Errorf("%w: no audio stream", services.ErrDurationUnavailable)
	// ErrUnparsableDuration is returned when the audio stream's duration is not a number.
	ErrUnparsableDuration = ffprobe.ErrUnparsableDuration
)

// Prober inspects media files; a nil result means the file is not media.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.Result, error)
}

// CommandRunner runs ffmpeg and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, args []string, onProgress ffmpeg.ProgressFunc) (string, error)
}

// Resolver computes file durations.
type Resolver struct {
	prober Prober
	runner CommandRunner
	logger *slog.Logger
}

// NewResolver builds a Resolver. runner may be nil when full decodes are never requested.
func NewResolver(prober Prober, runner CommandRunner, logger *slog.Logger) *Resolver {
	return &Resolver{prober: prober, runner: runner, logger: logging.NewComponentLogger(logger, "duration")}
}

// Resolve returns the duration of path in seconds. With decodeFully the file
// is decoded end to end and the last reported timestamp wins; if the decode
// prints no timestamp the resolver warns and falls back to metadata. Every
// failure to find a usable value wraps services.ErrDurationUnavailable.
func (r *Resolver) Resolve(ctx context.Context, path string, decodeFully bool) (float64, error) {
	if decodeFully {
		if seconds, ok := r.decode(ctx, path); ok {
			return seconds, nil
		}
	}
	result, err := r.prober.Probe(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", services.ErrDurationUnavailable, path, err)
	}
	return metadataDuration(path, result)
}

// ResolveProbed is Resolve for callers that already hold the probe result
// for path, avoiding a second ffprobe run.
func (r *Resolver) ResolveProbed(ctx context.Context, path string, result *ffprobe.Result, decodeFully bool) (float64, error) {
	if decodeFully {
		if seconds, ok := r.decode(ctx, path); ok {
			return seconds, nil
		}
	}
	return metadataDuration(path, result)
}

func (r *Resolver) decode(ctx context.Context, path string) (float64, bool) {
	if r.runner == nil {
		logging.WarnWithContext(r.logger, "full decode unavailable; using metadata duration", "decode_unavailable",
			logging.String("path", path))
		return 0, false
	}
	output, err := r.runner.Run(ctx, ffmpeg.DecodeArgs(path), nil)
	if err != nil {
		logging.WarnWithContext(r.logger, "decode failed; using metadata duration", "decode_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "duration may be less accurate"),
		)
		return 0, false
	}
	seconds, ok := ffmpeg.LastStatsTime(output)
	if !ok {
		logging.WarnWithContext(r.logger, "decode reported no time marker; using metadata duration", "decode_no_marker",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "duration may be less accurate"),
		)
		return 0, false
	}
	return seconds, true
}

func metadataDuration(path string, result *ffprobe.Result) (float64, error) {
	if result == nil || !result.HasAudio() {
		return 0, fmt.Errorf("%w: %s", ErrNoAudioStream, path)
	}
	seconds, err := result.Duration()
	if err != nil {
		if errors.Is(err, ErrUnparsableDuration) {
			return 0, fmt.Errorf("%w: %s", ErrUnparsableDuration, path)
		}
		return 0, err
	}
	return seconds, nil
}
