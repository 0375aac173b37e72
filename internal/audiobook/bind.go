package audiobook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"m4bind/internal/fileutil"
	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/segment"
	"m4bind/internal/services"
	"m4bind/internal/taskrunner"
	"m4bind/internal/workspace"
)

const (
	metadataFileName = "ffmetadata"
	manifestFileName = "filelist"
	longFileName     = "long.m4a"
	coverlessName    = "coverless.m4b"
	coveredName      = "covered.m4b"
)

// Bind renders the book into a chaptered container at outputPath.
//
// Nothing is written when the book has no chapters, a chapter has no
// backing file, or a chapter is malformed; those fail with
// services.ErrPrecondition. Any ffmpeg failure aborts the bind with an error
// wrapping services.ErrExternalTool. The workspace is removed afterwards
// unless KeepTempFiles is set. The Book's chapters are not modified.
func (b *Book) Bind(ctx context.Context, outputPath string) (err error) {
	if err := b.checkBindable(); err != nil {
		return err
	}

	lock, err := fileutil.LockTarget(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			b.logger.Debug("failed to release output lock", logging.Error(unlockErr))
		}
	}()

	ws := workspace.New(b.opts.WorkspaceDir, b.KeepTempFiles, b.logger)
	b.workspace = ws
	if b.KeepTempFiles {
		if _, err := ws.Ensure(); err != nil {
			return err
		}
	}
	defer func() {
		_ = ws.Release()
	}()
	ctx = services.WithRunID(ctx, ws.RunID())
	logger := logging.WithContext(ctx, b.logger)

	fast, err := b.singleFileCovered(ctx)
	if err != nil {
		return err
	}

	var finished string
	if fast {
		logger.Info("chapters cover one file, rewriting metadata only",
			logging.String("file", b.Chapters[0].File()),
			logging.Int("chapters", len(b.Chapters)),
		)
		finished, err = b.bindSingleFile(ctx, ws)
	} else {
		logger.Info("encoding chapters",
			logging.Int("chapters", len(b.Chapters)),
			logging.String("codec", b.codec()),
		)
		finished, err = b.bindSegments(ctx, ws)
	}
	if err != nil {
		return err
	}

	if err := fileutil.Publish(finished, outputPath); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	logger.Info("book written", logging.String("path", outputPath))
	return nil
}

func (b *Book) checkBindable() error {
	if len(b.Chapters) == 0 {
		return services.Wrap(services.ErrPrecondition, "bind", "check", "nothing to bind", nil)
	}
	for _, ch := range b.Chapters {
		if !ch.HasBacking() {
			return services.Wrap(services.ErrPrecondition, "bind", "check",
				fmt.Sprintf("chapter %d %q does not point to a file", ch.ID(), ch.Title()), nil)
		}
		if err := ch.Validate(); err != nil {
			return err
		}
	}
	if b.Cover != "" {
		if _, err := os.Stat(b.Cover); err != nil {
			return services.Wrap(services.ErrPrecondition, "bind", "check", "cover image unreadable", err)
		}
	}
	return nil
}

// singleFileCovered reports whether every chapter is backed by the same
// file and their spans account for all of it, within the configured
// tolerance.
func (b *Book) singleFileCovered(ctx context.Context) (bool, error) {
	file := b.Chapters[0].File()
	for _, ch := range b.Chapters[1:] {
		if ch.File() != file {
			return false, nil
		}
	}
	total, err := b.resolver.Resolve(ctx, file, false)
	if err != nil {
		if !errors.Is(err, services.ErrDurationUnavailable) {
			return false, err
		}
		logging.WarnWithContext(b.logger, "cannot measure backing file, re-encoding instead", "bind_fast_path_unavailable",
			logging.String("file", file),
			logging.Error(err),
			logging.String(logging.FieldImpact, "bind takes longer"),
		)
		return false, nil
	}
	residual := total - segment.TotalFileSpan(b.Chapters)
	b.logger.Debug("fast path check",
		logging.Float64("file_duration", total),
		logging.Float64("unaccounted", residual),
		logging.Float64("tolerance", b.opts.FastPathTolerance),
	)
	return residual <= b.opts.FastPathTolerance, nil
}

func (b *Book) bindSingleFile(ctx context.Context, ws *workspace.Workspace) (string, error) {
	tagged, err := b.writeChapters(ctx, ws, b.Chapters[0].File(), b.Metadata())
	if err != nil {
		return "", err
	}
	return b.attachCover(ctx, ws, tagged)
}

func (b *Book) bindSegments(ctx context.Context, ws *workspace.Workspace) (string, error) {
	dir, err := ws.Ensure()
	if err != nil {
		return "", err
	}

	tasks := make([]taskrunner.Task, 0, len(b.Chapters))
	fragments := make([]string, 0, len(b.Chapters))
	for i, ch := range b.Chapters {
		backing, _ := ch.Backing()
		stem := strings.TrimSuffix(filepath.Base(backing.File), filepath.Ext(backing.File))
		out := filepath.Join(dir, fmt.Sprintf("%d_%s.m4a", i, stem))
		fragments = append(fragments, out)
		tasks = append(tasks, taskrunner.Task{
			Name: stem,
			Args: ffmpeg.TranscodeArgs(backing.File, out, ffmpeg.Window{Start: backing.Start, End: backing.End}, ch.Title(), b.codec()),
		})
	}

	summary := b.tools.Tasks.Process(ctx, tasks)
	if summary != nil && len(summary.Failed) > 0 {
		return "", fmt.Errorf("%w: encode: %d of %d chapters failed (%s): %v",
			services.ErrExternalTool, len(summary.Failed), summary.Total,
			strings.Join(summary.FailedNames(), ", "), summary.Failed[0].Err)
	}

	// Encoder rounding shifts fragment lengths, so chapter times come from
	// the fragments themselves.
	encoded := b.scratch()
	if err := encoded.ScanFiles(ctx, fragments, ScanOptions{}); err != nil {
		return "", err
	}
	if len(encoded.Chapters) != len(fragments) {
		return "", fmt.Errorf("%w: encode: only %d of %d fragments are readable",
			services.ErrExternalTool, len(encoded.Chapters), len(fragments))
	}

	manifest, err := ws.File(manifestFileName)
	if err != nil {
		return "", err
	}
	if err := ffmpeg.WriteConcatManifest(manifest, fragments); err != nil {
		return "", err
	}
	long, err := ws.File(longFileName)
	if err != nil {
		return "", err
	}
	if _, err := b.tools.FFmpeg.Run(ctx, ffmpeg.ConcatArgs(manifest, long), nil); err != nil {
		return "", fmt.Errorf("concatenate fragments: %w", err)
	}

	tagged, err := b.writeChapters(ctx, ws, long, encoded.Metadata())
	if err != nil {
		return "", err
	}
	return b.attachCover(ctx, ws, tagged)
}

func (b *Book) writeChapters(ctx context.Context, ws *workspace.Workspace, input, metadata string) (string, error) {
	metaPath, err := ws.File(metadataFileName)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(metaPath, []byte(metadata), 0o644); err != nil {
		return "", fmt.Errorf("write chapter metadata: %w", err)
	}
	out, err := ws.File(coverlessName)
	if err != nil {
		return "", err
	}
	if _, err := b.tools.FFmpeg.Run(ctx, ffmpeg.ChapterArgs(input, metaPath, out), nil); err != nil {
		return "", fmt.Errorf("write chapters: %w", err)
	}
	return out, nil
}

func (b *Book) attachCover(ctx context.Context, ws *workspace.Workspace, input string) (string, error) {
	if b.Cover == "" {
		return input, nil
	}
	out, err := ws.File(coveredName)
	if err != nil {
		return "", err
	}
	if _, err := b.tools.FFmpeg.Run(ctx, ffmpeg.CoverAttachArgs(input, b.Cover, out), nil); err != nil {
		return "", fmt.Errorf("attach cover: %w", err)
	}
	return out, nil
}

func (b *Book) codec() string {
	if b.opts.AudioCodec == "" {
		return "aac"
	}
	return b.opts.AudioCodec
}
