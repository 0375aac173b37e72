package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"m4bind/internal/services"
)

// ErrUnparsableDuration is returned when a stream or container duration is
// missing or not a number.
var ErrUnparsableDuration = fmt.Errorf("%w: unparsable duration", services.ErrDurationUnavailable)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams  []Stream  `json:"streams"`
	Format   Format    `json:"format"`
	Chapters []Chapter `json:"chapters"`
	raw      []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Tags       Tags   `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
	Tags       Tags   `json:"tags"`
}

// Chapter is one embedded chapter mark.
type Chapter struct {
	ID        int64  `json:"id"`
	TimeBase  string `json:"time_base"`
	Start     int64  `json:"start"`
	StartTime string `json:"start_time"`
	End       int64  `json:"end"`
	EndTime   string `json:"end_time"`
	Tags      Tags   `json:"tags"`
}

// Title returns the chapter's title tag, or "".
func (c Chapter) Title() string {
	return c.Tags.Get("title", "")
}

// Seconds parses the chapter bounds.
func (c Chapter) Seconds() (float64, float64, error) {
	start, err := strconv.ParseFloat(strings.TrimSpace(c.StartTime), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("chapter %d start %q: %w", c.ID, c.StartTime, err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(c.EndTime), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("chapter %d end %q: %w", c.ID, c.EndTime, err)
	}
	return start, end, nil
}

// Tags is container, stream, or chapter metadata. Keys are matched
// case-insensitively since muxers disagree on casing (TITLE vs title).
type Tags map[string]string

// Get returns the value for key, or fallback when the key is absent or blank.
func (t Tags) Get(key, fallback string) string {
	if v, ok := t.Lookup(key); ok {
		return v
	}
	return fallback
}

// Lookup returns the trimmed, non-empty value for key.
func (t Tags) Lookup(key string) (string, bool) {
	if len(t) == 0 {
		return "", false
	}
	if v, ok := t[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	for k, v := range t {
		if strings.EqualFold(k, key) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Prober runs ffprobe for scan-time inspection.
type Prober struct {
	Binary string
}

// NewProber returns a Prober for the given executable ("" means ffprobe on PATH).
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary}
}

// Probe inspects path. A non-zero ffprobe exit returns (nil, nil): the file
// is not media ffprobe understands and callers should skip it. A missing
// binary or undecodable output is an error.
func (p *Prober) Probe(ctx context.Context, path string) (*Result, error) {
	binary := "ffprobe"
	if p != nil && strings.TrimSpace(p.Binary) != "" {
		binary = strings.TrimSpace(p.Binary)
	}
	result, err := run(ctx, binary, path)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return run(ctx, binary, path)
}

func run(ctx context.Context, binary, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "empty path", nil)
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-show_chapters", "-of", "json", "-i", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("%w: ffprobe inspect %s: %w: %s", services.ErrExternalTool, path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", path, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "parse", path, err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// FirstStream returns the first stream of codecType, scanning in order.
func (r Result) FirstStream(codecType string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			return stream, true
		}
	}
	return Stream{}, false
}

// AudioStream returns the first audio stream.
func (r Result) AudioStream() (Stream, bool) {
	return r.FirstStream("audio")
}

// HasAudio reports whether any audio stream was found.
func (r Result) HasAudio() bool {
	_, ok := r.AudioStream()
	return ok
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// Duration returns the first audio stream's duration in seconds, falling back
// to the container duration for formats that only report it there.
func (r Result) Duration() (float64, error) {
	if stream, ok := r.AudioStream(); ok {
		if d := parseFloat(stream.Duration); d > 0 && !math.IsNaN(d) {
			return d, nil
		}
	}
	d := parseFloat(r.Format.Duration)
	if d <= 0 || math.IsNaN(d) {
		return 0, ErrUnparsableDuration
	}
	return d, nil
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
