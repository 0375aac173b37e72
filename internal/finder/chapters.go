package finder

import (
	"context"
	"fmt"

	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/media/ffprobe"
	"m4bind/internal/segment"
)

// Prober inspects media files; a nil result means the file is not media.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.Result, error)
}

// FindChapters reads the chapter marks of path that lie entirely inside w.
// A file that cannot be probed yields no chapters.
func FindChapters(ctx context.Context, prober Prober, path string, w ffmpeg.Window) ([]segment.Segment, error) {
	result, err := prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	var out []segment.Segment
	for _, ch := range result.Chapters {
		start, end, err := ch.Seconds()
		if err != nil {
			return nil, fmt.Errorf("read chapters of %s: %w", path, err)
		}
		if start < w.Start {
			continue
		}
		if w.End > w.Start && end > w.End {
			continue
		}
		out = append(out, segment.NewBacked(int(ch.ID), ch.Title(), start, end, path, start, end))
	}
	return out, nil
}
