package cover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"m4bind/internal/logging"
	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/services"
)

type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, args []string, _ ffmpeg.ProgressFunc) (string, error) {
	r.calls = append(r.calls, args)
	if r.err != nil {
		return "", r.err
	}
	return "", os.WriteFile(args[len(args)-1], []byte(strings.Join(args, " ")), 0o644)
}

func TestCheckImagePath(t *testing.T) {
	for path, ok := range map[string]bool{
		"cover.png":  true,
		"cover.JPG":  true,
		"cover.jpeg": true,
		"cover.gif":  false,
		"cover":      false,
	} {
		err := CheckImagePath(path)
		if ok && err != nil {
			t.Errorf("CheckImagePath(%q) = %v", path, err)
		}
		if !ok && !errors.Is(err, services.ErrValidation) {
			t.Errorf("CheckImagePath(%q) expected validation error, got %v", path, err)
		}
	}
}

func TestExtractFallsBackToFFmpeg(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.m4b")
	if err := os.WriteFile(input, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &recordingRunner{}
	svc := NewService(runner, logging.NewNop())

	output := filepath.Join(dir, "cover.png")
	if err := svc.Extract(context.Background(), input, output); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(runner.calls) != 1 || strings.Join(runner.calls[0], " ") != strings.Join(ffmpeg.CoverExtractArgs(input, output), " ") {
		t.Fatalf("unexpected ffmpeg calls %v", runner.calls)
	}
}

func TestExtractRejectsBadExtension(t *testing.T) {
	runner := &recordingRunner{}
	svc := NewService(runner, logging.NewNop())
	if err := svc.Extract(context.Background(), "book.m4b", "cover.bmp"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("ffmpeg must not run")
	}
}

func TestApplyInPlace(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.m4b")
	image := filepath.Join(dir, "art.jpg")
	for _, p := range []string{input, image} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	svc := NewService(&recordingRunner{}, logging.NewNop())
	if err := svc.ApplyInPlace(context.Background(), input, image, t.TempDir()); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "attached_pic") {
		t.Fatalf("input was not replaced by the covered file: %q", data)
	}
}

func TestApplyFailures(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&recordingRunner{}, logging.NewNop())
	if err := svc.Apply(context.Background(), "book.m4b", filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.m4b")); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}

	image := filepath.Join(dir, "art.png")
	if err := os.WriteFile(image, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	failing := NewService(&recordingRunner{err: services.ErrExternalTool}, logging.NewNop())
	if err := failing.Apply(context.Background(), "book.m4b", image, filepath.Join(dir, "out.m4b")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
