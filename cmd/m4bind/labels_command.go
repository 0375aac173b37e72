package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"m4bind/internal/segment"
)

type labelsOptions struct {
	fromBook      string
	fromLabelFile string
	toMetadata    string
	toLabelFile   string
	toBook        string
}

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	var opts labelsOptions

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Convert between Audacity labels and chapter metadata",
		Long: "Read chapters from a book or an Audacity label file and write them as labels,\n" +
			"as an ffmpeg metadata file, or onto another book. Without an output flag the\n" +
			"labels are printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabels(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.fromBook, "from-book", "", "Read chapters from a book")
	flags.StringVar(&opts.fromLabelFile, "from-label-file", "", "Read Audacity labels from a text file")
	flags.StringVar(&opts.toMetadata, "to-metadata-file", "", "Write ffmpeg chapter metadata to a file")
	flags.StringVar(&opts.toLabelFile, "to-label-file", "", "Write Audacity labels to a file")
	flags.StringVar(&opts.toBook, "to-book", "", "Apply the labels as chapters to an existing book")
	cmd.MarkFlagsMutuallyExclusive("from-book", "from-label-file")
	cmd.MarkFlagsOneRequired("from-book", "from-label-file")
	return cmd
}

func runLabels(cmd *cobra.Command, ctx *commandContext, opts labelsOptions) error {
	book, err := ctx.newBook()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	if path := strings.TrimSpace(opts.fromLabelFile); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open label file: %w", err)
		}
		labels, err := segment.ParseLabels(f, logger)
		f.Close()
		if err != nil {
			return err
		}
		book.Chapters = labels
	} else if err := book.ScanChapteredFile(cmd.Context(), opts.fromBook); err != nil {
		return err
	}

	wrote := false
	if path := strings.TrimSpace(opts.toLabelFile); path != "" {
		if err := writeLabelFile(path, book.Chapters); err != nil {
			return err
		}
		wrote = true
	}
	if path := strings.TrimSpace(opts.toMetadata); path != "" {
		if err := os.WriteFile(path, []byte(book.Metadata()), 0o644); err != nil {
			return fmt.Errorf("write metadata file: %w", err)
		}
		wrote = true
	}
	if path := strings.TrimSpace(opts.toBook); path != "" {
		target, err := ctx.newBook()
		if err != nil {
			return err
		}
		if err := target.Relabel(cmd.Context(), path, book.Chapters); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d chapters to %s\n", len(target.Chapters), path)
		wrote = true
	}
	if !wrote {
		return segment.WriteLabels(cmd.OutOrStdout(), book.Chapters)
	}
	return nil
}

func writeLabelFile(path string, chapters []segment.Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create label file: %w", err)
	}
	if err := segment.WriteLabels(f, chapters); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

