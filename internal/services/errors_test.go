package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"m4bind/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "audiobook", "concat", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"audiobook", "concat", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"soft skip", services.Wrap(services.ErrSoftSkip, "scan", "probe", "not audio", nil), false},
		{"duration", fmt.Errorf("resolve: %w", services.ErrDurationUnavailable), false},
		{"task", services.Wrap(services.ErrTaskFailure, "runner", "encode", "", nil), false},
		{"precondition", services.Wrap(services.ErrPrecondition, "bind", "", "nothing to bind", nil), true},
		{"external", services.Wrap(services.ErrExternalTool, "bind", "concat", "", nil), true},
		{"plain", errors.New("io"), true},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.fatal {
			t.Fatalf("%s: expected fatal=%v, got %v", tc.name, tc.fatal, got)
		}
	}
	if services.ExitCode(nil) != 0 || services.ExitCode(errors.New("x")) != 1 {
		t.Fatal("unexpected exit code mapping")
	}
}
