package segment

import (
	"fmt"

	"m4bind/internal/services"
)

// Slide shifts every segment by delta seconds while pinning the sequence's
// outer boundaries: the first start and last end (and their file-relative
// counterparts) keep their original values, so only interior boundaries move.
// Segments pushed entirely outside the original span are dropped and the
// survivors renumbered from 0. The input slice is not modified.
func Slide(segs []Segment, delta float64) []Segment {
	if len(segs) == 0 || delta == 0 {
		return segs
	}

	first, last := segs[0], segs[len(segs)-1]
	start, end := first.start, last.end
	fileBounds := first.backed && last.backed
	fileStart, fileEnd := first.backing.Start, last.backing.End

	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		shifted := s.Shift(delta)
		if outside(shifted.start, shifted.end, start, end) {
			continue
		}
		if fileBounds && shifted.backed && outside(shifted.backing.Start, shifted.backing.End, fileStart, fileEnd) {
			continue
		}
		out = append(out, shifted)
	}
	if len(out) == 0 {
		return out
	}
	if len(out) != len(segs) {
		out = Renumber(out, 0)
	}

	n := len(out) - 1
	out[n].end = end
	out[0].start = start
	if fileBounds {
		if out[n].backed {
			out[n].backing.End = fileEnd
		}
		if out[0].backed {
			out[0].backing.Start = fileStart
		}
	}
	return out
}

func outside(segStart, segEnd, spanStart, spanEnd float64) bool {
	return segStart > spanEnd || segEnd <= 0 || segEnd < spanStart
}

// TrimStart drops every leading segment that ends before trim seconds, pins
// the new first segment to 0, and pulls the last end back by trim. The
// result is meant to be slid afterwards; see Apply.
func TrimStart(segs []Segment, trim float64) ([]Segment, error) {
	if trim < 0 {
		return nil, services.Wrap(services.ErrPrecondition, "segment", "trim", fmt.Sprintf("negative trim %.3f", trim), nil)
	}
	if len(segs) == 0 {
		return nil, services.Wrap(services.ErrPrecondition, "segment", "trim", "no segments to trim", nil)
	}
	if trim == 0 {
		return append([]Segment(nil), segs...), nil
	}

	last := segs[len(segs)-1]
	keep := 0
	for keep < len(segs) && segs[keep].end < trim {
		keep++
	}
	if keep == len(segs) {
		return nil, services.Wrap(services.ErrPrecondition, "segment", "trim", "no chapters were left after trim", nil)
	}

	out := append([]Segment(nil), segs[keep:]...)
	n := len(out) - 1
	out[0].start = 0
	if out[0].backed {
		out[0].backing.Start = 0
	}
	out[n].end = Round(last.end - trim)
	if out[n].backed && last.backed {
		out[n].backing.End = Round(last.backing.End - trim)
	}
	return out, nil
}

// SlideOptions mirrors the slide command: an optional leading trim followed
// by a shift.
type SlideOptions struct {
	Delta     float64
	TrimStart float64
}

// Apply trims (when requested) and then slides by Delta minus TrimStart.
// An empty result is a precondition failure.
func Apply(segs []Segment, opts SlideOptions) ([]Segment, error) {
	if len(segs) == 0 {
		return nil, services.Wrap(services.ErrPrecondition, "segment", "slide", "no chapters found", nil)
	}
	out := segs
	if opts.TrimStart > 0 {
		trimmed, err := TrimStart(segs, opts.TrimStart)
		if err != nil {
			return nil, err
		}
		out = trimmed
	}
	out = Slide(out, opts.Delta-opts.TrimStart)
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrPrecondition, "segment", "slide", "no chapters were left after slide", nil)
	}
	return out, nil
}
