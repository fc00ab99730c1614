package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"Hegemony/internal/tick"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "run <loop>",
		Short:     "Run one scheduler pass (army, construction, accrual, starvation, report)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"army", "construction", "accrual", "starvation", "report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			loop, err := tick.ParseLoop(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			eng, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			start := time.Now()
			res, err := eng.Scheduler.RunOnce(ctx, loop)
			if err != nil {
				return fmt.Errorf("run %s: %w", loop, err)
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewTable(out,
				tablewriter.WithHeader([]string{"Loop", "Claimed", "Failed", "Deferred", "Elapsed"}),
			)
			table.Append([]string{
				string(loop),
				fmt.Sprintf("%d", res.Claimed),
				fmt.Sprintf("%d", res.Failed),
				fmt.Sprintf("%d", res.Deferred),
				time.Since(start).Round(time.Millisecond).String(),
			})
			table.Render()
			if res.Failed > 0 {
				color.New(color.FgYellow).Fprintf(out, "%d item(s) failed, see logs\n", res.Failed)
			}
			return nil
		},
	}
}
