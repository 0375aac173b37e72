package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"m4bind/internal/audiobook"
	"m4bind/internal/services"
)

type bindOptions struct {
	author          string
	cover           string
	outputDir       string
	outputName      string
	title           string
	date            string
	decodeDurations bool
	showOrder       bool
	keepTempFiles   bool
	useFilenames    bool
}

func newBindCommand(ctx *commandContext) *cobra.Command {
	var opts bindOptions

	cmd := &cobra.Command{
		Use:   "bind <dir>",
		Short: "Bind a directory of audio files into one chaptered .m4b",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if opts.showOrder {
				return showOrder(cmd, dir)
			}
			return runBind(cmd, ctx, dir, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.author, "author", "a", "", "Name of the author")
	flags.StringVarP(&opts.cover, "cover", "c", "", "Image file to use as cover")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory to put the finished audiobook")
	flags.StringVarP(&opts.outputName, "output-name", "n", "", "File name for the finished audiobook (default \"<author> - <title>.m4b\")")
	flags.StringVarP(&opts.title, "title", "t", "", "Title of the audiobook")
	flags.StringVar(&opts.date, "date", "", "Date to include in metadata")
	flags.BoolVar(&opts.decodeDurations, "decode-durations", false, "Fully decode each file to measure its duration (slower, more accurate)")
	flags.BoolVar(&opts.showOrder, "show-order", false, "Show the order files would be read in, then exit")
	flags.BoolVar(&opts.keepTempFiles, "keep-temp-files", false, "Keep the scratch workspace for debugging")
	flags.BoolVar(&opts.useFilenames, "use-filenames", false, "Use file names as chapter titles instead of title tags")
	return cmd
}

func showOrder(cmd *cobra.Command, dir string) error {
	files, err := audiobook.ListDirectory(dir)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(files))
	for i, file := range files {
		rows = append(rows, []string{strconv.Itoa(i), filepath.Base(file)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "File"}, rows, []columnAlignment{alignRight, alignLeft}))
	return nil
}

func runBind(cmd *cobra.Command, ctx *commandContext, dir string, opts bindOptions) error {
	outputDir := strings.TrimSpace(opts.outputDir)
	if outputDir != "" {
		info, err := os.Stat(outputDir)
		if err != nil || !info.IsDir() {
			return services.Wrap(services.ErrPrecondition, "bind", "check", fmt.Sprintf("%q is not a directory", outputDir), nil)
		}
	}

	book, err := ctx.newBook()
	if err != nil {
		return err
	}
	book.Author = opts.author
	book.Title = opts.title
	book.Date = opts.date
	book.Cover = opts.cover
	book.OutputName = opts.outputName
	book.KeepTempFiles = book.KeepTempFiles || opts.keepTempFiles

	scan := audiobook.ScanOptions{UseFilenames: opts.useFilenames, DecodeDurations: opts.decodeDurations}
	if err := book.ScanDirectory(cmd.Context(), dir, scan); err != nil {
		return err
	}

	output := filepath.Join(outputDir, book.SuggestedFileName())
	fmt.Fprintf(cmd.OutOrStdout(), "Writing %s (%d chapters)\n", output, len(book.Chapters))
	if err := book.Bind(cmd.Context(), output); err != nil {
		return err
	}
	if book.KeepTempFiles {
		fmt.Fprintf(cmd.OutOrStdout(), "Temporary files kept in %s\n", book.WorkspacePath())
	}
	return nil
}
