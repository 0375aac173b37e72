package segment_test

import (
	"errors"
	"testing"

	"m4bind/internal/segment"
	"m4bind/internal/services"
)

func TestNewRoundsToMilliseconds(t *testing.T) {
	s := segment.NewBacked(0, "one", 0.12345, 5.00049, "a.mp3", 0.0004, 4.9996)
	if s.Start() != 0.123 || s.End() != 5.0 {
		t.Fatalf("unexpected logical times: %v", s)
	}
	b, ok := s.Backing()
	if !ok {
		t.Fatal("expected backing")
	}
	if b.Start != 0 || b.End != 5.0 {
		t.Fatalf("unexpected file times: %+v", b)
	}
}

func TestWithMethodsReturnCopies(t *testing.T) {
	orig := segment.New(1, "one", 0, 5)
	updated := orig.WithTitle("renamed").WithTimes(1.23456, 6).WithID(4)
	if orig.Title() != "one" || orig.ID() != 1 || orig.Start() != 0 {
		t.Fatalf("original mutated: %v", orig)
	}
	if updated.Title() != "renamed" || updated.ID() != 4 || updated.Start() != 1.235 {
		t.Fatalf("unexpected update: %v", updated)
	}
}

func TestUnbackedSegmentsHaveNoFileTimes(t *testing.T) {
	s := segment.New(0, "", 0, 5).WithFileTimes(1, 2)
	if s.HasBacking() {
		t.Fatal("WithFileTimes should not create a backing")
	}
	if s.File() != "" {
		t.Fatalf("expected empty file, got %q", s.File())
	}

	backed := segment.NewBacked(0, "", 0, 5, "a.mp3", 0, 5).WithoutBacking()
	if _, ok := backed.Backing(); ok {
		t.Fatal("WithoutBacking should drop the backing")
	}
}

func TestShiftMovesBothCoordinateSpaces(t *testing.T) {
	s := segment.NewBacked(0, "", 10, 20, "a.mp3", 5, 15).Shift(-2.5)
	b, _ := s.Backing()
	if s.Start() != 7.5 || s.End() != 17.5 || b.Start != 2.5 || b.End != 12.5 {
		t.Fatalf("unexpected shift result: %v", s)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		seg  segment.Segment
		ok   bool
	}{
		{"valid", segment.NewBacked(0, "", 0, 5, "a.mp3", 0, 5), true},
		{"unbacked", segment.New(0, "", 0, 5), true},
		{"inverted logical", segment.New(0, "", 5, 1), false},
		{"inverted file", segment.NewBacked(0, "", 0, 5, "a.mp3", 5, 1), false},
		{"empty file", segment.NewBacked(0, "", 0, 5, " ", 0, 5), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.seg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, services.ErrPrecondition) {
				t.Fatalf("expected precondition error, got %v", err)
			}
		})
	}
}

func TestRenumberAndTotalFileSpan(t *testing.T) {
	segs := []segment.Segment{
		segment.NewBacked(7, "", 0, 5, "a.mp3", 1, 3),
		segment.New(9, "", 5, 6),
		segment.NewBacked(8, "", 6, 10, "b.mp3", 0, 4),
	}
	renumbered := segment.Renumber(segs, 3)
	for i, s := range renumbered {
		if s.ID() != 3+i {
			t.Fatalf("segment %d has id %d", i, s.ID())
		}
	}
	if segs[0].ID() != 7 {
		t.Fatal("Renumber mutated its input")
	}
	if got := segment.TotalFileSpan(segs); got != 6 {
		t.Fatalf("expected total span 6, got %v", got)
	}
}
