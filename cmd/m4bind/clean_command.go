package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"m4bind/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var list bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove scratch workspaces left behind by earlier runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			root := cfg.Paths.WorkspaceDir
			out := cmd.OutOrStdout()

			if list {
				dirs, err := workspace.List(root)
				if err != nil {
					return fmt.Errorf("list workspaces: %w", err)
				}
				if len(dirs) == 0 {
					fmt.Fprintf(out, "No workspaces in %s\n", root)
					return nil
				}
				rows := make([][]string, 0, len(dirs))
				for _, d := range dirs {
					rows = append(rows, []string{d.Name, d.ModTime.Format(time.DateTime), strconv.FormatInt(d.Size, 10)})
				}
				fmt.Fprintln(out, renderTable([]string{"Workspace", "Modified", "Bytes"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				return nil
			}

			result := workspace.CleanStale(root, olderThan, logger)
			fmt.Fprintf(out, "Removed %d workspaces from %s\n", len(result.Removed), root)
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return fmt.Errorf("remove %s: %w (%d failures)", first.Path, first.Error, len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove workspaces last modified before this age")
	cmd.Flags().BoolVar(&list, "list", false, "List workspaces instead of removing them")
	return cmd
}
