package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"m4bind/internal/cover"
	"m4bind/internal/workspace"
)

func newCoverCommand(ctx *commandContext) *cobra.Command {
	var extractTo, applyFrom string

	cmd := &cobra.Command{
		Use:   "cover <file>",
		Short: "Extract or apply cover art",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg, logger, tools, err := ctx.session()
			if err != nil {
				return err
			}
			svc := cover.NewService(tools.FFmpeg, logger)
			out := cmd.OutOrStdout()

			if target := strings.TrimSpace(extractTo); target != "" {
				if err := cover.CheckImagePath(target); err != nil {
					return err
				}
				if err := svc.Extract(cmd.Context(), input, target); err != nil {
					return err
				}
				fmt.Fprintf(out, "Extracted cover to %s\n", target)
			}
			if image := strings.TrimSpace(applyFrom); image != "" {
				ws := workspace.New(cfg.Paths.WorkspaceDir, false, logger)
				defer ws.Release() //nolint:errcheck
				dir, err := ws.Ensure()
				if err != nil {
					return err
				}
				if err := svc.ApplyInPlace(cmd.Context(), input, image, dir); err != nil {
					return err
				}
				fmt.Fprintf(out, "Applied %s to %s\n", image, input)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&extractTo, "extract-cover", "e", "", "Extract the embedded cover to this .png or .jpg path")
	cmd.Flags().StringVarP(&applyFrom, "apply-cover", "a", "", "Attach this image as the cover, rewriting the file in place")
	cmd.MarkFlagsOneRequired("extract-cover", "apply-cover")
	return cmd
}
