package audiobook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/media/ffprobe"
	"m4bind/internal/services"
	"m4bind/internal/taskrunner"
	"m4bind/internal/testsupport"
)

// studio fakes ffprobe and ffmpeg over an in-memory catalogue of media.
// Every ffmpeg run writes its output file and, for encodes, registers the
// fragment so a later probe sees it.
type studio struct {
	mu     sync.Mutex
	media  map[string]*ffprobe.Result
	calls  [][]string
	failOn string
	// drift is added to every encoded fragment's duration.
	drift float64
}

func newStudio() *studio {
	return &studio{media: make(map[string]*ffprobe.Result)}
}

func audioResult(seconds float64, tags ffprobe.Tags) *ffprobe.Result {
	d := strconv.FormatFloat(seconds, 'f', -1, 64)
	return &ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "aac", Duration: d}},
		Format:  ffprobe.Format{Duration: d, Tags: tags},
	}
}

func (s *studio) add(path string, result *ffprobe.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[path] = result
}

func (s *studio) Probe(_ context.Context, path string) (*ffprobe.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media[path], nil
}

func (s *studio) Run(_ context.Context, args []string, onProgress ffmpeg.ProgressFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, args)

	joined := strings.Join(args, " ")
	if s.failOn != "" && strings.Contains(joined, s.failOn) {
		return "boom", fmt.Errorf("%w: ffmpeg exited with status 1: boom", services.ErrExternalTool)
	}

	out := args[len(args)-1]
	if out == "-y" {
		out = args[len(args)-2]
	}
	if err := os.WriteFile(out, []byte(joined), 0o644); err != nil {
		return "", err
	}

	if strings.Contains(joined, "asetpts") {
		input := argAfter(args, "-i")
		seconds, _ := strconv.ParseFloat(argAfter(args, "-t"), 64)
		if seconds == 0 {
			if src := s.media[input]; src != nil {
				seconds = src.DurationSeconds()
			}
		}
		tags := ffprobe.Tags{}
		if title := argAfter(args, "-metadata"); title != "" {
			tags["title"] = strings.TrimPrefix(title, "title=")
		}
		s.media[out] = audioResult(seconds+s.drift, tags)
	}
	if onProgress != nil {
		onProgress(100)
	}
	return "", nil
}

func (s *studio) ran(fragment string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, call := range s.calls {
		if slices.Contains(call, fragment) {
			n++
		}
	}
	return n
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func newTestBook(t *testing.T, s *studio) *Book {
	t.Helper()
	tasks := taskrunner.NewRunner(taskrunner.FFmpegExecutor{Runner: s}, 2, logging.NewNop(),
		taskrunner.WithDisplay(taskrunner.NewLogDisplay(logging.NewNop())))
	return New(Tools{Prober: s, FFmpeg: s, Tasks: tasks}, Options{
		WorkspaceDir:      filepath.Join(t.TempDir(), "workspace"),
		AudioCodec:        "aac",
		FastPathTolerance: 0.1,
	}, logging.NewNop())
}

// toneDir writes n placeholder files and registers each as seconds of audio.
func toneDir(t *testing.T, s *studio, n int, seconds float64) string {
	t.Helper()
	dir := t.TempDir()
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("tone %d.mp3", i))
	}
	for _, path := range testsupport.WriteMediaFiles(t, dir, names...) {
		s.add(path, audioResult(seconds, nil))
	}
	return dir
}

func fragmentsIn(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*_*.m4a"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}
