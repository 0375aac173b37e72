// Package splitter cuts one audio file into several, one per segment.
package splitter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/segment"
	"m4bind/internal/services"
	"m4bind/internal/taskrunner"
	"m4bind/internal/textutil"
)

// DefaultPattern names outputs segment_0000.mp3, segment_0001.mp3, ...
const DefaultPattern = `segment_{{printf "%04d" .Index}}.mp3`

// CoverExtractor writes the embedded cover of a file to an image path.
type CoverExtractor interface {
	Extract(ctx context.Context, input, output string) error
}

// TaskProcessor fans tasks out to workers. See taskrunner.Runner.
type TaskProcessor interface {
	Process(ctx context.Context, tasks []taskrunner.Task) *taskrunner.Summary
}

// NameData is the value output patterns are executed against.
type NameData struct {
	Index int
	Title string
}

// Pattern renders output file names.
type Pattern struct {
	tmpl *template.Template
}

// ParsePattern compiles a text/template output pattern. "" selects
// DefaultPattern.
func ParsePattern(text string) (*Pattern, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPattern
	}
	tmpl, err := template.New("output").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "split", "pattern", text, err)
	}
	return &Pattern{tmpl: tmpl}, nil
}

// Name renders the file name for the segment at index. The title is made
// file-name safe before it reaches the template.
func (p *Pattern) Name(index int, title string) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, NameData{Index: index, Title: textutil.SanitizeFileName(title)}); err != nil {
		return "", services.Wrap(services.ErrValidation, "split", "pattern", "render", err)
	}
	name := strings.TrimSpace(buf.String())
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", services.Wrap(services.ErrValidation, "split", "pattern", fmt.Sprintf("invalid file name %q", name), nil)
	}
	return name, nil
}

// Splitter writes segments of an input to separate files.
type Splitter struct {
	tasks  TaskProcessor
	cover  CoverExtractor
	logger *slog.Logger
}

// New builds a Splitter. cover may be nil to skip cover extraction.
func New(tasks TaskProcessor, cover CoverExtractor, logger *slog.Logger) *Splitter {
	return &Splitter{tasks: tasks, cover: cover, logger: logging.NewComponentLogger(logger, "split")}
}

// DropShort removes segments shorter than minimum seconds.
func DropShort(segs []segment.Segment, minimum float64) []segment.Segment {
	out := make([]segment.Segment, 0, len(segs))
	for _, s := range segs {
		if s.End()-s.Start() < minimum {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Split writes one file per segment into outDir and returns the paths in
// segment order. The cover, if any, is extracted to outDir/cover.png first;
// failing to extract it only warns.
func (s *Splitter) Split(ctx context.Context, input, outDir string, segs []segment.Segment, pattern *Pattern) ([]string, error) {
	if len(segs) == 0 {
		return nil, services.Wrap(services.ErrPrecondition, "split", "check", "no segments found", nil)
	}
	if pattern == nil {
		var err error
		if pattern, err = ParsePattern(""); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if s.cover != nil {
		if err := s.cover.Extract(ctx, input, filepath.Join(outDir, "cover.png")); err != nil {
			logging.WarnWithContext(s.logger, "unable to extract cover", "cover_extract_failed",
				logging.String("path", input),
				logging.Error(err),
				logging.String(logging.FieldImpact, "segments written without cover.png"),
			)
		}
	}

	tasks := make([]taskrunner.Task, 0, len(segs))
	outputs := make([]string, 0, len(segs))
	seen := make(map[string]int, len(segs))
	for i, seg := range segs {
		name, err := pattern.Name(i, seg.Title())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[name]; dup {
			return nil, services.Wrap(services.ErrValidation, "split", "pattern",
				fmt.Sprintf("segments %d and %d both map to %q", prev, i, name), nil)
		}
		seen[name] = i
		out := filepath.Join(outDir, name)
		outputs = append(outputs, out)

		taskName := fmt.Sprintf("Splitting segment %d", i)
		if seg.Title() != "" {
			taskName += " - " + seg.Title()
		}
		tasks = append(tasks, taskrunner.Task{
			Name: taskName,
			Args: ffmpeg.SplitArgs(input, out, window(seg), seg.Title()),
		})
	}

	s.logger.Info("splitting", logging.String("path", input), logging.Int("segments", len(segs)))
	summary := s.tasks.Process(ctx, tasks)
	if err := summary.Err(); err != nil {
		return outputs, fmt.Errorf("%w: %w", services.ErrExternalTool, err)
	}
	return outputs, nil
}

func window(seg segment.Segment) ffmpeg.Window {
	if b, ok := seg.Backing(); ok {
		return ffmpeg.Window{Start: b.Start, End: b.End}
	}
	return ffmpeg.Window{Start: seg.Start(), End: seg.End()}
}
