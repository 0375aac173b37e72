package audiobook

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"m4bind/internal/config"
	"m4bind/internal/logging"
	"m4bind/internal/media/duration"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/media/ffprobe"
	"m4bind/internal/segment"
	"m4bind/internal/taskrunner"
	"m4bind/internal/textutil"
	"m4bind/internal/workspace"
)

// Prober inspects media files; a nil result means the file is not media.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.Result, error)
}

// CommandRunner runs ffmpeg and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, args []string, onProgress ffmpeg.ProgressFunc) (string, error)
}

// TaskProcessor fans tasks out to workers. See taskrunner.Runner.
type TaskProcessor interface {
	Process(ctx context.Context, tasks []taskrunner.Task) *taskrunner.Summary
}

// Tools bundles the external collaborators a Book drives.
type Tools struct {
	Prober Prober
	FFmpeg CommandRunner
	Tasks  TaskProcessor
}

// NewTools wires ffprobe, ffmpeg, and a task runner from configuration.
func NewTools(cfg *config.Config, logger *slog.Logger) Tools {
	runner := ffmpeg.NewRunner(cfg.FFmpegBinary(), logger)
	return Tools{
		Prober: ffprobe.NewProber(cfg.FFprobeBinary()),
		FFmpeg: runner,
		Tasks:  taskrunner.NewRunner(taskrunner.FFmpegExecutor{Runner: runner}, cfg.Bind.Workers, logger),
	}
}

// Options holds the bind settings that come from configuration.
type Options struct {
	WorkspaceDir      string
	AudioCodec        string
	FastPathTolerance float64
}

// OptionsFromConfig extracts bind settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		WorkspaceDir:      cfg.Paths.WorkspaceDir,
		AudioCodec:        cfg.Bind.AudioCodec,
		FastPathTolerance: cfg.Bind.FastPathTolerance,
	}
}

// Book is one audiobook in progress. Title, Author, and Date set before a
// scan are never overwritten by scanned tags.
type Book struct {
	Title         string
	Author        string
	Date          string
	Cover         string
	OutputName    string
	KeepTempFiles bool
	Chapters      []segment.Segment

	tools     Tools
	opts      Options
	resolver  *duration.Resolver
	workspace *workspace.Workspace
	logger    *slog.Logger
}

// New returns an empty Book.
func New(tools Tools, opts Options, logger *slog.Logger) *Book {
	logger = logging.NewComponentLogger(logger, "audiobook")
	return &Book{
		tools:    tools,
		opts:     opts,
		resolver: duration.NewResolver(tools.Prober, tools.FFmpeg, logger),
		logger:   logger,
	}
}

// scratch returns an empty Book sharing b's collaborators and metadata.
func (b *Book) scratch() *Book {
	s := New(b.tools, b.opts, b.logger)
	s.Title, s.Author, s.Date = b.Title, b.Author, b.Date
	return s
}

// WorkspacePath returns the workspace directory of the most recent bind,
// or "" if the Book has never been bound.
func (b *Book) WorkspacePath() string {
	if b.workspace == nil {
		return ""
	}
	return b.workspace.Path()
}

// SuggestedFileName returns OutputName, or "<author> - <title>.m4b" when it
// is unset. The result always ends in .m4b and never contains a path
// separator.
func (b *Book) SuggestedFileName() string {
	name := strings.TrimSpace(b.OutputName)
	if name == "" {
		author := strings.TrimSpace(b.Author)
		if author == "" {
			author = "Unknown Author"
		}
		title := strings.TrimSpace(b.Title)
		if title == "" {
			title = "Unknown Title"
		}
		name = author + " - " + title + ".m4b"
	}
	name = textutil.SanitizeFileName(name)
	if !strings.EqualFold(filepath.Ext(name), ".m4b") {
		name += ".m4b"
	}
	return name
}

// Duration returns the end of the last chapter.
func (b *Book) Duration() float64 {
	if len(b.Chapters) == 0 {
		return 0
	}
	return b.Chapters[len(b.Chapters)-1].End()
}

func (b *Book) fillTags(tags ffprobe.Tags, titleKey string) {
	if b.Title == "" {
		b.Title = tags.Get(titleKey, "")
	}
	if b.Author == "" {
		b.Author = tags.Get("artist", "")
	}
	if b.Date == "" {
		b.Date = tags.Get("date", "")
	}
}
