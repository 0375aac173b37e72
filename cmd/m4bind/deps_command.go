package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"m4bind/internal/deps"
	"m4bind/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that ffmpeg and ffprobe are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				info := s.Version
				if !s.Available {
					state = "missing"
					info = s.Detail
				}
				rows = append(rows, []string{s.Name, s.Command, state, info})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tool", "Command", "Status", "Detail"}, rows, nil))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return services.Wrap(services.ErrConfiguration, "deps", "check",
					"missing required tools: "+strings.Join(names, ", "), nil)
			}
			return nil
		},
	}
}
