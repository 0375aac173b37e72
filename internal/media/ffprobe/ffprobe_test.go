package ffprobe_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"m4bind/internal/media/ffprobe"
	"m4bind/internal/services"
	"m4bind/internal/testsupport"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "png"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "duration": "42.5"}
  ],
  "chapters": [
    {"id": 0, "time_base": "1/1000", "start": 0, "start_time": "0.000000", "end": 20000, "end_time": "20.000000", "tags": {"title": "Intro"}},
    {"id": 1, "time_base": "1/1000", "start": 20000, "start_time": "20.000000", "end": 42500, "end_time": "42.500000", "tags": {"TITLE": "Outro"}}
  ],
  "format": {"filename": "book.m4b", "duration": "42.512", "tags": {"ALBUM": "The Book", "artist": "Someone"}}
}`

func TestResultHelpers(t *testing.T) {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Index: 0},
			{CodecType: "audio", Index: 1, Duration: "12.5"},
			{CodecType: "audio", Index: 2, Duration: "99"},
		},
		Format: ffprobe.Format{Duration: "13", BitRate: "32000"},
	}
	stream, ok := result.AudioStream()
	if !ok || stream.Index != 1 {
		t.Fatalf("expected first audio stream, got %+v ok=%v", stream, ok)
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	d, err := result.Duration()
	if err != nil || d != 12.5 {
		t.Fatalf("expected audio stream duration 12.5, got %v err=%v", d, err)
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
	if _, ok := result.FirstStream("subtitle"); ok {
		t.Fatal("expected no subtitle stream")
	}
}

func TestDurationFallsBackToContainer(t *testing.T) {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio"}},
		Format:  ffprobe.Format{Duration: "7.25"},
	}
	d, err := result.Duration()
	if err != nil || d != 7.25 {
		t.Fatalf("expected container duration, got %v err=%v", d, err)
	}
}

func TestDurationUnparsable(t *testing.T) {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", Duration: "N/A"}},
		Format:  ffprobe.Format{Duration: "bad"},
	}
	_, err := result.Duration()
	if !errors.Is(err, ffprobe.ErrUnparsableDuration) || !errors.Is(err, services.ErrDurationUnavailable) {
		t.Fatalf("expected unparsable duration, got %v", err)
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected NaN container duration, got %v", result.DurationSeconds())
	}
}

func TestTagsLookup(t *testing.T) {
	tags := ffprobe.Tags{"TITLE": "Loud", "artist": "  ", "date": "2001"}
	if got := tags.Get("title", "x"); got != "Loud" {
		t.Fatalf("expected case-insensitive lookup, got %q", got)
	}
	if got := tags.Get("artist", "fallback"); got != "fallback" {
		t.Fatalf("blank values should use the fallback, got %q", got)
	}
	var empty ffprobe.Tags
	if got := empty.Get("date", "none"); got != "none" {
		t.Fatalf("nil tags should use the fallback, got %q", got)
	}
}

func TestProbeParsesOutput(t *testing.T) {
	dir := t.TempDir()
	script := testsupport.WriteScript(t, dir, "ffprobe", "cat <<'JSON'\n"+probeJSON+"\nJSON\n")

	result, err := ffprobe.NewProber(script).Probe(context.Background(), filepath.Join(dir, "book.m4b"))
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if result == nil {
		t.Fatal("expected result")
	}
	if len(result.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(result.Chapters))
	}
	if result.Chapters[1].Title() != "Outro" {
		t.Fatalf("unexpected chapter title: %q", result.Chapters[1].Title())
	}
	start, end, err := result.Chapters[1].Seconds()
	if err != nil || start != 20 || end != 42.5 {
		t.Fatalf("unexpected chapter bounds: %v %v %v", start, end, err)
	}
	if result.Format.Tags.Get("album", "") != "The Book" {
		t.Fatalf("unexpected album tag: %v", result.Format.Tags)
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw JSON to be retained")
	}
}

func TestProbeNonZeroExitIsSoft(t *testing.T) {
	dir := t.TempDir()
	script := testsupport.WriteScript(t, dir, "ffprobe", "echo 'Invalid data found when processing input' >&2\nexit 1\n")

	result, err := ffprobe.NewProber(script).Probe(context.Background(), filepath.Join(dir, "notes.txt"))
	if err != nil {
		t.Fatalf("expected no error for non-zero exit, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}

	if _, err := ffprobe.Inspect(context.Background(), script, filepath.Join(dir, "notes.txt")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("Inspect should report the failure, got %v", err)
	}
}

func TestProbeMissingBinaryIsError(t *testing.T) {
	_, err := ffprobe.NewProber(filepath.Join(t.TempDir(), "missing-ffprobe")).Probe(context.Background(), "a.mp3")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestProbeMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	script := testsupport.WriteScript(t, dir, "ffprobe", "echo '{not json'\n")
	if _, err := ffprobe.NewProber(script).Probe(context.Background(), "a.mp3"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
