package ffmpeg

import (
	"fmt"
	"strconv"
)

// Window selects part of an input. A zero Start reads from the beginning and
// an End at or before Start reads to the end of the input.
type Window struct {
	Start float64
	End   float64
}

func (w Window) inputArgs(input string) []string {
	var args []string
	if w.Start > 0 {
		args = append(args, "-ss", formatSeconds(w.Start))
	}
	args = append(args, "-i", input)
	if w.End > w.Start {
		args = append(args, "-t", formatSeconds(w.End-w.Start))
	}
	return args
}

// TranscodeArgs re-encodes the window of input to codec, resetting
// timestamps so fragments concatenate cleanly, and stamps title when set.
func TranscodeArgs(input, output string, w Window, title, codec string) []string {
	if codec == "" {
		codec = "aac"
	}
	args := w.inputArgs(input)
	if title != "" {
		args = append(args, "-metadata", "title="+title)
	}
	return append(args,
		"-filter_complex", "[0:a]asetpts=N/SR/TB[s0]",
		"-map", "[s0]",
		"-c:a", codec,
		output, "-y",
	)
}

// ConcatArgs joins the files listed in manifest without re-encoding.
func ConcatArgs(manifest, output string) []string {
	return []string{"-y", "-f", "concat", "-safe", "0", "-i", manifest, "-c", "copy", output}
}

// ChapterArgs copies input while replacing its global tags and chapter table
// with the contents of an FFMETADATA1 file.
func ChapterArgs(input, metadataFile, output string) []string {
	return []string{"-y", "-i", input, "-i", metadataFile, "-map_metadata", "1", "-map_chapters", "1", "-c", "copy", output}
}

// CoverAttachArgs adds image to input as an attached picture.
func CoverAttachArgs(input, image, output string) []string {
	return []string{"-y", "-i", input, "-i", image, "-map", "0:a", "-map", "1", "-c", "copy", "-disposition:v:0", "attached_pic", output}
}

// CoverExtractArgs writes the embedded picture stream of input to output.
func CoverExtractArgs(input, output string) []string {
	return []string{"-y", "-i", input, "-an", output}
}

// SilenceDetectArgs runs the silencedetect filter over the window and
// discards the audio.
func SilenceDetectArgs(input string, w Window, minSilence, thresholdDB float64) []string {
	args := w.inputArgs(input)
	filter := fmt.Sprintf("[0]silencedetect=d=%s:n=%sdB[s0]", formatSeconds(minSilence), formatSeconds(thresholdDB))
	return append(args, "-filter_complex", filter, "-map", "[s0]", "-f", "null", "-")
}

// DecodeArgs decodes input completely so the final time= marker reports its
// real duration.
func DecodeArgs(input string) []string {
	return []string{"-i", input, "-loglevel", "info", "-nostats", "-f", "null", "-"}
}

// SplitArgs copies the window of input into output without chapters,
// stamping title when set.
func SplitArgs(input, output string, w Window, title string) []string {
	args := w.inputArgs(input)
	args = append(args, "-map", "0:a", "-map_chapters", "-1", "-y")
	if title != "" {
		args = append(args, "-metadata", "title="+title)
	}
	return append(args, output)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
