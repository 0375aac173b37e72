package audiobook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"m4bind/internal/finder"
	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/media/ffprobe"
	"m4bind/internal/natsort"
	"m4bind/internal/segment"
	"m4bind/internal/services"
	"m4bind/internal/textutil"
)

// ScanOptions controls how files become chapters.
type ScanOptions struct {
	// UseFilenames titles chapters by file stem instead of the title tag.
	UseFilenames bool
	// DecodeDurations decodes each file completely to measure it.
	DecodeDurations bool
}

var coverExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// IsCoverFile reports whether path names a cover image: base name "cover"
// in any case with a png or jpeg extension.
func IsCoverFile(path string) bool {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return strings.EqualFold(stem, "cover") && coverExtensions[strings.ToLower(ext)]
}

// ListDirectory returns the regular files in dir in natural order.
func ListDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrPrecondition, "scan", "read directory", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	natsort.Strings(names)
	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
	}
	return files, nil
}

// ScanDirectory appends a chapter for every audio file in dir.
func (b *Book) ScanDirectory(ctx context.Context, dir string, opts ScanOptions) error {
	files, err := ListDirectory(dir)
	if err != nil {
		return err
	}
	return b.ScanFiles(ctx, files, opts)
}

// ScanFiles appends one chapter per audio file, in the order given. Files
// that are not audio, or whose duration cannot be found, are skipped with a
// warning. The returned error is reserved for failures that would affect
// every file, such as a missing ffprobe.
func (b *Book) ScanFiles(ctx context.Context, files []string, opts ScanOptions) error {
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if IsCoverFile(file) {
			if b.Cover == "" {
				b.Cover = file
				b.logger.Debug("found cover image", logging.String("path", file))
			}
			continue
		}
		if err := b.scanFile(ctx, file, opts); err != nil {
			if errors.Is(err, services.ErrSoftSkip) {
				continue
			}
			return err
		}
	}
	return nil
}

func (b *Book) scanFile(ctx context.Context, file string, opts ScanOptions) error {
	result, err := b.tools.Prober.Probe(ctx, file)
	if err != nil {
		return err
	}
	if result == nil || !result.HasAudio() {
		logging.WarnWithContext(b.logger, "unable to parse file, skipping", "scan_skip",
			logging.String("path", file),
			logging.String(logging.FieldErrorHint, "file is not audio or ffprobe cannot read it"),
			logging.String(logging.FieldImpact, "file left out of the book"),
		)
		return services.ErrSoftSkip
	}

	ordinal := len(b.Chapters) + 1
	tags := result.Format.Tags
	b.fillTags(tags, "album")

	title := tags.Get("title", "")
	if opts.UseFilenames {
		title = textutil.TitleFromPath(file)
	}
	if title == "" {
		title = strconv.Itoa(ordinal)
	}

	seconds, err := b.resolver.ResolveProbed(ctx, file, result, opts.DecodeDurations)
	if err != nil {
		if !errors.Is(err, services.ErrDurationUnavailable) {
			return err
		}
		logging.WarnWithContext(b.logger, "failed to determine duration, skipping", "scan_skip",
			logging.String("path", file),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file left out of the book"),
		)
		return services.ErrSoftSkip
	}

	start := b.Duration()
	b.Chapters = append(b.Chapters, segment.NewBacked(ordinal, title, start, start+seconds, file, 0, seconds))
	b.logger.Debug("added chapter",
		logging.Int("id", ordinal),
		logging.String("title", title),
		logging.Float64("duration", seconds),
	)
	return nil
}

// ScanChapteredFile appends the embedded chapters of a single container,
// shifted to follow the chapters already present. A file that cannot be
// probed or has no audio stream adds nothing.
func (b *Book) ScanChapteredFile(ctx context.Context, path string) error {
	result, err := b.tools.Prober.Probe(ctx, path)
	if err != nil {
		return err
	}
	if result == nil || !result.HasAudio() {
		logging.WarnWithContext(b.logger, "unable to parse file, skipping", "scan_skip",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "no chapters read"),
		)
		return nil
	}

	chapters, err := finder.FindChapters(ctx, probed{result}, path, ffmpeg.Window{})
	if err != nil {
		return err
	}

	timeShift, idShift := 0.0, 0
	if n := len(b.Chapters); n > 0 {
		timeShift = b.Chapters[n-1].End()
		idShift = b.Chapters[n-1].ID() + 1
	}
	for _, ch := range chapters {
		ch = ch.WithTimes(ch.Start()+timeShift, ch.End()+timeShift).WithID(ch.ID() + idShift)
		b.Chapters = append(b.Chapters, ch)
	}
	b.fillTags(result.Format.Tags, "title")
	b.logger.Debug("read chapters", logging.String("path", path), logging.Int("chapters", len(chapters)))
	return nil
}

// probed serves a result that has already been fetched.
type probed struct {
	result *ffprobe.Result
}

func (p probed) Probe(context.Context, string) (*ffprobe.Result, error) {
	return p.result, nil
}
