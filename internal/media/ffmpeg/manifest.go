package ffmpeg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteConcatManifest writes a concat demuxer file list naming files in order.
func WriteConcatManifest(path string, files []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create concat manifest: %w", err)
	}
	if err := writeManifest(f, files); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close concat manifest: %w", err)
	}
	return nil
}

func writeManifest(w io.Writer, files []string) error {
	bw := bufio.NewWriter(w)
	for _, file := range files {
		if _, err := fmt.Fprintf(bw, "file '%s'\n", EscapeConcatPath(file)); err != nil {
			return fmt.Errorf("write concat manifest: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}

// EscapeConcatPath quotes single quotes the way the concat demuxer expects
// inside a single-quoted path: close the quote, escape, reopen.
func EscapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
