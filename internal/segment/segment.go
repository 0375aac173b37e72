package segment

import (
	"fmt"
	"math"
	"strings"

	"m4bind/internal/services"
)

// Backing identifies the source file that supplies a segment's audio and the
// file-relative span it covers.
type Backing struct {
	File  string
	Start float64
	End   float64
}

// Duration returns the length of the backed span.
func (b Backing) Duration() float64 {
	return b.End - b.Start
}

// Segment is one chapter or detected region. Values are immutable; the With
// methods return updated copies.
type Segment struct {
	id      int
	title   string
	start   float64
	end     float64
	backing Backing
	backed  bool
}

// Round normalizes a time value to millisecond precision.
func Round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// New returns an unbacked segment on the logical timeline.
func New(id int, title string, start, end float64) Segment {
	return Segment{id: id, title: title, start: Round(start), end: Round(end)}
}

// NewBacked returns a segment whose audio lives in file between fileStart and fileEnd.
func NewBacked(id int, title string, start, end float64, file string, fileStart, fileEnd float64) Segment {
	return New(id, title, start, end).WithBacking(file, fileStart, fileEnd)
}

func (s Segment) ID() int           { return s.id }
func (s Segment) Title() string     { return s.title }
func (s Segment) Start() float64    { return s.start }
func (s Segment) End() float64      { return s.end }
func (s Segment) Duration() float64 { return Round(s.end - s.start) }

// Backing returns the backing span and whether the segment has one.
func (s Segment) Backing() (Backing, bool) {
	return s.backing, s.backed
}

// HasBacking reports whether the segment is backed by a source file.
func (s Segment) HasBacking() bool { return s.backed }

// File returns the backing file path, or "" for synthetic segments.
func (s Segment) File() string {
	if !s.backed {
		return ""
	}
	return s.backing.File
}

func (s Segment) WithID(id int) Segment {
	s.id = id
	return s
}

func (s Segment) WithTitle(title string) Segment {
	s.title = title
	return s
}

func (s Segment) WithTimes(start, end float64) Segment {
	s.start = Round(start)
	s.end = Round(end)
	return s
}

func (s Segment) WithStart(start float64) Segment {
	s.start = Round(start)
	return s
}

func (s Segment) WithEnd(end float64) Segment {
	s.end = Round(end)
	return s
}

// WithBacking attaches a source file span.
func (s Segment) WithBacking(file string, fileStart, fileEnd float64) Segment {
	s.backing = Backing{File: file, Start: Round(fileStart), End: Round(fileEnd)}
	s.backed = true
	return s
}

// WithoutBacking drops the source file and its file-relative times.
func (s Segment) WithoutBacking() Segment {
	s.backing = Backing{}
	s.backed = false
	return s
}

// WithFileTimes updates the file-relative span. Unbacked segments have no
// file times and are returned unchanged.
func (s Segment) WithFileTimes(fileStart, fileEnd float64) Segment {
	if !s.backed {
		return s
	}
	s.backing.Start = Round(fileStart)
	s.backing.End = Round(fileEnd)
	return s
}

// Shift moves both coordinate spaces by delta seconds.
func (s Segment) Shift(delta float64) Segment {
	s.start = Round(s.start + delta)
	s.end = Round(s.end + delta)
	if s.backed {
		s.backing.Start = Round(s.backing.Start + delta)
		s.backing.End = Round(s.backing.End + delta)
	}
	return s
}

// Validate reports inverted spans and backed segments without a file.
func (s Segment) Validate() error {
	if s.start > s.end {
		return services.Wrap(services.ErrPrecondition, "segment", "validate",
			fmt.Sprintf("segment %d starts after it ends (%.3f > %.3f)", s.id, s.start, s.end), nil)
	}
	if !s.backed {
		return nil
	}
	if strings.TrimSpace(s.backing.File) == "" {
		return services.Wrap(services.ErrPrecondition, "segment", "validate",
			fmt.Sprintf("segment %d has an empty backing file", s.id), nil)
	}
	if s.backing.Start > s.backing.End {
		return services.Wrap(services.ErrPrecondition, "segment", "validate",
			fmt.Sprintf("segment %d file span is inverted (%.3f > %.3f)", s.id, s.backing.Start, s.backing.End), nil)
	}
	return nil
}

func (s Segment) String() string {
	if s.backed {
		return fmt.Sprintf("#%d %q [%.3f-%.3f] %s[%.3f-%.3f]", s.id, s.title, s.start, s.end, s.backing.File, s.backing.Start, s.backing.End)
	}
	return fmt.Sprintf("#%d %q [%.3f-%.3f]", s.id, s.title, s.start, s.end)
}

// Renumber returns a copy of segs with ids reassigned from first.
func Renumber(segs []Segment, first int) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = s.WithID(first + i)
	}
	return out
}

// TotalFileSpan sums the file-relative spans of backed segments.
func TotalFileSpan(segs []Segment) float64 {
	var total float64
	for _, s := range segs {
		if s.backed {
			total += s.backing.Duration()
		}
	}
	return total
}
