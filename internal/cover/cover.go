// Package cover extracts and attaches audiobook cover art.
package cover

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/audiometa"

	"m4bind/internal/fileutil"
	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/services"
)

// CommandRunner runs ffmpeg and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, args []string, onProgress ffmpeg.ProgressFunc) (string, error)
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// CheckImagePath rejects output paths ffmpeg could not write as a cover.
func CheckImagePath(path string) error {
	if _, ok := imageTypes[strings.ToLower(filepath.Ext(path))]; !ok {
		return services.Wrap(services.ErrValidation, "cover", "check", fmt.Sprintf("%s: extension must be .png, .jpg, or .jpeg", path), nil)
	}
	return nil
}

// Service reads and writes cover art.
type Service struct {
	ffmpeg CommandRunner
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(runner CommandRunner, logger *slog.Logger) *Service {
	return &Service{ffmpeg: runner, logger: logging.NewComponentLogger(logger, "cover")}
}

// Extract writes the embedded cover of input to output. Artwork already in
// the output's format is copied straight out of the tags; anything else is
// converted by ffmpeg.
func (s *Service) Extract(ctx context.Context, input, output string) error {
	if err := CheckImagePath(output); err != nil {
		return err
	}
	if ok := s.extractEmbedded(ctx, input, output); ok {
		return nil
	}
	if _, err := s.ffmpeg.Run(ctx, ffmpeg.CoverExtractArgs(input, output), nil); err != nil {
		return fmt.Errorf("extract cover: %w", err)
	}
	return nil
}

func (s *Service) extractEmbedded(ctx context.Context, input, output string) bool {
	file, err := audiometa.OpenContext(ctx, input)
	if err != nil {
		s.logger.Debug("tag reader cannot open file", logging.String("path", input), logging.Error(err))
		return false
	}
	defer file.Close() //nolint:errcheck

	artworks, err := file.ExtractArtwork()
	if err != nil || len(artworks) == 0 {
		s.logger.Debug("no embedded artwork found by tag reader", logging.String("path", input), logging.Error(err))
		return false
	}
	data := artworks[0].Data
	want := imageTypes[strings.ToLower(filepath.Ext(output))]
	if http.DetectContentType(data) != want {
		return false
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		s.logger.Debug("write artwork failed", logging.String("path", output), logging.Error(err))
		return false
	}
	s.logger.Debug("extracted embedded artwork",
		logging.String("path", output),
		logging.Int("bytes", len(data)),
		logging.String("format", file.Format.String()),
	)
	return true
}

// Apply attaches image to input, writing the result to output.
func (s *Service) Apply(ctx context.Context, input, image, output string) error {
	if _, err := os.Stat(image); err != nil {
		return services.Wrap(services.ErrPrecondition, "cover", "apply", "cover image unreadable", err)
	}
	if _, err := s.ffmpeg.Run(ctx, ffmpeg.CoverAttachArgs(input, image, output), nil); err != nil {
		return fmt.Errorf("attach cover: %w", err)
	}
	return nil
}

// ApplyInPlace attaches image to input, replacing input. scratchDir holds
// the intermediate file.
func (s *Service) ApplyInPlace(ctx context.Context, input, image, scratchDir string) error {
	lock, err := fileutil.LockTarget(input)
	if err != nil {
		return err
	}
	defer lock.Unlock() //nolint:errcheck

	covered := filepath.Join(scratchDir, "covered"+filepath.Ext(input))
	if err := s.Apply(ctx, input, image, covered); err != nil {
		return err
	}
	return fileutil.Publish(covered, input)
}
