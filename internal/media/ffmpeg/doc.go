// Package ffmpeg runs ffmpeg and builds the argument lists m4bind needs.
//
// Runner executes one ffmpeg invocation with stdout and stderr merged,
// optionally injecting `-progress - -nostats` so completion percentages can
// be reported while the command runs. The args helpers produce the fixed
// command shapes used elsewhere: segment transcode, concat, chapter
// metadata, cover attach/extract, silence detection, full decode, and split.
// WriteConcatManifest and the clock parsers cover the file and text formats
// ffmpeg reads and writes.
package ffmpeg
