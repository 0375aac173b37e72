package audiobook

import (
	"context"

	"m4bind/internal/logging"
	"m4bind/internal/segment"
	"m4bind/internal/services"
)

// Slide moves the interior chapter boundaries per opts. See segment.Apply.
func (b *Book) Slide(opts segment.SlideOptions) error {
	if len(b.Chapters) == 0 {
		return services.Wrap(services.ErrPrecondition, "slide", "check", "no chapters found", nil)
	}
	slid, err := segment.Apply(b.Chapters, opts)
	if err != nil {
		return err
	}
	b.Chapters = slid
	return nil
}

// FitLabels turns labels into chapters backed by file, which is total
// seconds long. A label straddling the end is cut at total; labels past it
// are dropped. Ids are assigned from 0.
func FitLabels(labels []segment.Segment, file string, total float64) []segment.Segment {
	out := make([]segment.Segment, 0, len(labels))
	for _, label := range labels {
		start, end := label.Start(), label.End()
		if end > total && total > start {
			end = total
		}
		if end > total {
			continue
		}
		out = append(out, segment.NewBacked(len(out), label.Title(), start, end, file, start, end))
	}
	return out
}

// Relabel replaces the chapters of the container at path with labels and
// binds it back in place. Tags already in the container are kept.
func (b *Book) Relabel(ctx context.Context, path string, labels []segment.Segment) error {
	if err := b.ScanChapteredFile(ctx, path); err != nil {
		return err
	}
	total, err := b.resolver.Resolve(ctx, path, false)
	if err != nil {
		return err
	}
	chapters := FitLabels(labels, path, total)
	if dropped := len(labels) - len(chapters); dropped > 0 {
		logging.WarnWithContext(b.logger, "labels extend past the end of the book", "labels_dropped",
			logging.Int("dropped", dropped),
			logging.Float64("book_duration", total),
			logging.String(logging.FieldImpact, "those labels were not applied"),
		)
	}
	b.Chapters = chapters
	return b.Bind(ctx, path)
}
