package finder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/media/ffprobe"
	"m4bind/internal/segment"
	"m4bind/internal/services"
)

type fakeRunner struct {
	output string
	err    error
	args   []string
}

func (f *fakeRunner) Run(_ context.Context, args []string, _ ffmpeg.ProgressFunc) (string, error) {
	f.args = args
	return f.output, f.err
}

type fakeProber struct {
	result *ffprobe.Result
	err    error
}

func (f fakeProber) Probe(context.Context, string) (*ffprobe.Result, error) {
	return f.result, f.err
}

func spans(segs []segment.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, fmt.Sprintf("%d:%g-%g", s.ID(), s.Start(), s.End()))
	}
	return strings.Join(parts, " ")
}

const fourTones = `Input #0, wav, from 'silences.wav':
  Duration: 00:00:20.00, bitrate: 705 kb/s
[silencedetect @ 0x55d1] silence_start: 2.5
[silencedetect @ 0x55d1] silence_end: 5 | silence_duration: 2.5
[silencedetect @ 0x55d1] silence_start: 7.5
[silencedetect @ 0x55d1] silence_end: 10 | silence_duration: 2.5
[silencedetect @ 0x55d1] silence_start: 12.5
[silencedetect @ 0x55d1] silence_end: 15 | silence_duration: 2.5
[silencedetect @ 0x55d1] silence_start: 17.5
size=N/A time=00:00:20.00 bitrate=N/A speed= 900x
[silencedetect @ 0x55d1] silence_end: 20 | silence_duration: 2.5
`

func TestFindSilenceFourTones(t *testing.T) {
	runner := &fakeRunner{output: fourTones}
	segs, err := FindSilence(context.Background(), runner, "silences.wav", SilenceOptions{MinSilence: 0.25, ThresholdDB: -35})
	if err != nil {
		t.Fatalf("FindSilence: %v", err)
	}
	if got, want := spans(segs), "0:0-2.5 1:5-7.5 2:10-12.5 3:15-17.5"; got != want {
		t.Fatalf("spans = %q, want %q", got, want)
	}
	for _, s := range segs {
		b, ok := s.Backing()
		if !ok || b.File != "silences.wav" || b.Start != s.Start() || b.End != s.End() {
			t.Fatalf("segment %v not backed by input with matching times", s)
		}
	}
	if !strings.Contains(strings.Join(runner.args, " "), "silencedetect=d=0.25:n=-35dB") {
		t.Fatalf("unexpected args %v", runner.args)
	}
}

func TestParseSilenceEndsWithSound(t *testing.T) {
	lines := strings.Split(`[silencedetect @ 0x1] silence_start: 2.5
[silencedetect @ 0x1] silence_end: 5 | silence_duration: 2.5
[silencedetect @ 0x1] silence_start: 7.5
[silencedetect @ 0x1] silence_end: 10 | silence_duration: 2.5
[silencedetect @ 0x1] silence_start: 12.5
[silencedetect @ 0x1] silence_end: 15 | silence_duration: 2.5
size=N/A time=00:00:17.51 bitrate=N/A speed= 900x`, "\n")

	got := parseSilence(lines, ffmpeg.Window{})
	want := [][2]float64{{0, 2.5}, {5, 7.5}, {10, 12.5}, {15, 17.51}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("parseSilence = %v, want %v", got, want)
	}
}

func TestParseSilenceLeadingSilence(t *testing.T) {
	lines := []string{
		"[silencedetect @ 0x1] silence_start: 0",
		"[silencedetect @ 0x1] silence_end: 1.5 | silence_duration: 1.5",
		"[silencedetect @ 0x1] silence_start: 4",
		"size=N/A time=00:00:06.00 bitrate=N/A",
	}
	got := parseSilence(lines, ffmpeg.Window{})
	if fmt.Sprint(got) != fmt.Sprint([][2]float64{{1.5, 4}}) {
		t.Fatalf("parseSilence = %v", got)
	}
}

func TestParseSilenceWindow(t *testing.T) {
	// Timestamps are relative to the -ss offset of 4s.
	lines := []string{
		"[silencedetect @ 0x1] silence_start: 0",
		"[silencedetect @ 0x1] silence_end: 1 | silence_duration: 1",
		"[silencedetect @ 0x1] silence_start: 3.5",
		"[silencedetect @ 0x1] silence_end: 6 | silence_duration: 2.5",
		"size=N/A time=00:00:08.60 bitrate=N/A",
	}
	got := parseSilence(lines, ffmpeg.Window{Start: 4, End: 12.6})
	want := [][2]float64{{5, 7.5}, {10, 12.6}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("parseSilence = %v, want %v", got, want)
	}
}

func TestParseSilenceFallsBackToWindowEnd(t *testing.T) {
	lines := []string{
		"[silencedetect @ 0x1] silence_start: 2",
		"[silencedetect @ 0x1] silence_end: 3 | silence_duration: 1",
	}
	got := parseSilence(lines, ffmpeg.Window{End: 9})
	if fmt.Sprint(got) != fmt.Sprint([][2]float64{{0, 2}, {3, 9}}) {
		t.Fatalf("parseSilence = %v", got)
	}
}

func TestFindSilenceNoEvents(t *testing.T) {
	runner := &fakeRunner{output: "size=N/A time=00:00:20.00 bitrate=N/A\n"}
	segs, err := FindSilence(context.Background(), runner, "steady.wav", SilenceOptions{MinSilence: 3, ThresholdDB: -35})
	if err != nil {
		t.Fatalf("FindSilence: %v", err)
	}
	if len(segs) != 0 {
		t.Fatalf("expected no segments, got %s", spans(segs))
	}
}

func TestFindSilencePropagatesToolFailure(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: exit 1", services.ErrExternalTool)}
	if _, err := FindSilence(context.Background(), runner, "x.wav", SilenceOptions{}); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func chapteredResult() *ffprobe.Result {
	mk := func(id int64, start, end, title string) ffprobe.Chapter {
		return ffprobe.Chapter{ID: id, StartTime: start, EndTime: end, Tags: ffprobe.Tags{"title": title}}
	}
	return &ffprobe.Result{Chapters: []ffprobe.Chapter{
		mk(0, "0.000000", "2.500000", "110Hz - Loud"),
		mk(1, "2.500000", "5.000000", "110Hz - Soft"),
		mk(2, "5.000000", "7.500000", "220Hz - Loud"),
		mk(3, "7.500000", "10.000000", "220Hz - Soft"),
	}}
}

func TestFindChapters(t *testing.T) {
	segs, err := FindChapters(context.Background(), fakeProber{result: chapteredResult()}, "book.m4b", ffmpeg.Window{})
	if err != nil {
		t.Fatalf("FindChapters: %v", err)
	}
	if got := spans(segs); got != "0:0-2.5 1:2.5-5 2:5-7.5 3:7.5-10" {
		t.Fatalf("spans = %q", got)
	}
	if segs[1].Title() != "110Hz - Soft" {
		t.Fatalf("unexpected title %q", segs[1].Title())
	}
	if segs[3].File() != "book.m4b" {
		t.Fatalf("unexpected backing file %q", segs[3].File())
	}
}

func TestFindChaptersWindow(t *testing.T) {
	segs, err := FindChapters(context.Background(), fakeProber{result: chapteredResult()}, "book.m4b", ffmpeg.Window{Start: 2, End: 8})
	if err != nil {
		t.Fatalf("FindChapters: %v", err)
	}
	if got := spans(segs); got != "1:2.5-5 2:5-7.5" {
		t.Fatalf("spans = %q", got)
	}
}

func TestFindChaptersUnreadableFile(t *testing.T) {
	segs, err := FindChapters(context.Background(), fakeProber{}, "notes.txt", ffmpeg.Window{})
	if err != nil || len(segs) != 0 {
		t.Fatalf("expected empty result, got %v, %v", segs, err)
	}
}
