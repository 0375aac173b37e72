package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"m4bind/internal/segment"
)

func newSlideCommand(ctx *commandContext) *cobra.Command {
	var delta, trim float64
	var keepTempFiles bool

	cmd := &cobra.Command{
		Use:   "slide <file>",
		Short: "Move the chapter boundaries of a book",
		Long: "Shift every interior chapter boundary by --duration seconds (negative moves\n" +
			"them earlier). --trim-start drops that much from the front first. The book\n" +
			"is rewritten in place.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			book, err := ctx.newBook()
			if err != nil {
				return err
			}
			book.KeepTempFiles = book.KeepTempFiles || keepTempFiles
			if err := book.ScanChapteredFile(cmd.Context(), path); err != nil {
				return err
			}
			if err := book.Slide(segment.SlideOptions{Delta: delta, TrimStart: trim}); err != nil {
				return err
			}
			if err := book.Bind(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chapters slid by %s\n", strconv.FormatFloat(delta, 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&delta, "duration", "d", 0, "Seconds to shift chapter boundaries; negative values allowed")
	cmd.Flags().Float64Var(&trim, "trim-start", 0, "Seconds to trim from the beginning")
	cmd.Flags().BoolVar(&keepTempFiles, "keep-temp-files", false, "Keep the scratch workspace for debugging")
	return cmd
}
