// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams, format metadata, and chapters
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate, tags)
//   - Chapter: one embedded chapter mark with its title tag
//   - Tags: case-insensitive key/value metadata with lookup-with-default
//
// Entry points:
//   - Prober.Probe: the scan-time call; a non-zero ffprobe exit yields a nil
//     Result rather than an error, since that is how ffprobe reports a
//     non-media file
//   - Inspect: executes ffprobe and always reports failures as errors
package ffprobe
