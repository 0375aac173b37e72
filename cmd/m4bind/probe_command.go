package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"m4bind/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show the streams, tags, and chapters of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderProbe(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw ffprobe JSON")
	return cmd
}

func renderProbe(r ffprobe.Result) string {
	var sb strings.Builder

	format := [][]string{
		{"File", r.Format.Filename},
		{"Format", r.Format.FormatName},
		{"Duration", formatClock(r.DurationSeconds())},
		{"Bit rate", strconv.FormatInt(r.BitRate(), 10)},
	}
	for _, key := range []string{"title", "album", "artist", "date"} {
		if v, ok := r.Format.Tags.Lookup(key); ok {
			format = append(format, []string{key, v})
		}
	}
	sb.WriteString(renderTitledTable("Format", []string{"Field", "Value"}, format, nil))
	sb.WriteString("\n")

	streams := make([][]string, 0, len(r.Streams))
	for _, s := range r.Streams {
		detail := ""
		switch strings.ToLower(s.CodecType) {
		case "audio":
			detail = fmt.Sprintf("%s Hz, %d ch", s.SampleRate, s.Channels)
		case "video":
			detail = fmt.Sprintf("%dx%d", s.Width, s.Height)
		}
		streams = append(streams, []string{strconv.Itoa(s.Index), s.CodecType, s.CodecName, detail})
	}
	sb.WriteString(renderTitledTable("Streams", []string{"#", "Type", "Codec", "Detail"}, streams, []columnAlignment{alignRight}))
	sb.WriteString("\n")

	if len(r.Chapters) > 0 {
		chapters := make([][]string, 0, len(r.Chapters))
		for _, ch := range r.Chapters {
			start, end, err := ch.Seconds()
			if err != nil {
				continue
			}
			chapters = append(chapters, []string{strconv.FormatInt(ch.ID, 10), formatClock(start), formatClock(end), ch.Title()})
		}
		sb.WriteString(renderTitledTable("Chapters", []string{"#", "Start", "End", "Title"}, chapters, []columnAlignment{alignRight, alignRight, alignRight}))
		sb.WriteString("\n")
	}
	return sb.String()
}

// printJSON writes the payload ffprobe produced, or re-encodes the parsed
// result when the raw bytes were not kept.
func printJSON(w io.Writer, r ffprobe.Result) error {
	if raw := bytes.TrimSpace(r.RawJSON()); len(raw) > 0 {
		_, err := w.Write(append(raw, '\n'))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// formatClock renders seconds as H:MM:SS.mmm.
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms%1000)
}
