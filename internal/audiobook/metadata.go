package audiobook

import (
	"math"
	"strconv"
	"strings"

	"m4bind/internal/segment"
)

// Metadata renders the book as an FFMETADATA1 document.
func (b *Book) Metadata() string {
	return RenderMetadata(b.Title, b.Author, b.Date, b.Chapters)
}

var metadataEscaper = strings.NewReplacer(
	`\`, `\\`,
	"=", `\=`,
	";", `\;`,
	"#", `\#`,
	"\n", "\\\n",
)

// RenderMetadata builds the FFMETADATA1 payload ffmpeg reads with
// -map_metadata/-map_chapters. Chapter bounds are logical times in whole
// milliseconds.
func RenderMetadata(title, author, date string, chapters []segment.Segment) string {
	var sb strings.Builder
	sb.WriteString(";FFMETADATA1\n")
	sb.WriteString("major_brand=M4A\n")
	sb.WriteString("minor_version=512\n")
	sb.WriteString("compatible_brands=M4A isomiso2\n")
	writeTag(&sb, "title", title)
	writeTag(&sb, "artist", author)
	writeTag(&sb, "album", title)
	writeTag(&sb, "date", date)
	sb.WriteString("genre=Audiobook\n")
	for _, ch := range chapters {
		sb.WriteString("[CHAPTER]\n")
		sb.WriteString("TIMEBASE=1/1000\n")
		sb.WriteString("START=" + strconv.FormatInt(millis(ch.Start()), 10) + "\n")
		sb.WriteString("END=" + strconv.FormatInt(millis(ch.End()), 10) + "\n")
		writeTag(&sb, "title", ch.Title())
	}
	return sb.String()
}

func writeTag(sb *strings.Builder, key, value string) {
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(metadataEscaper.Replace(value))
	sb.WriteByte('\n')
}

func millis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
