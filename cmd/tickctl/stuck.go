package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"Hegemony/internal/game/domain"
)

func newStuckCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stuck",
		Short: "List armies whose arrival failed and need operator review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			armies, err := eng.Store.ListFaultedArmies(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(armies) == 0 {
				color.New(color.FgGreen).Fprintln(out, "no faulted armies")
				return nil
			}
			renderArmies(cmd, armies)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "max rows")
	return cmd
}

func renderArmies(cmd *cobra.Command, armies []domain.Army) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Army", "Owner", "Mission", "Origin", "Dest", "Arrives", "Claimed", "Fault"}),
	)
	for _, a := range armies {
		table.Append([]string{
			strconv.FormatInt(int64(a.ID), 10),
			strconv.FormatInt(int64(a.OwnerID), 10),
			string(a.Mission),
			fmt.Sprintf("(%d,%d)", a.OriginX, a.OriginY),
			fmt.Sprintf("(%d,%d)", a.DestX, a.DestY),
			a.ArrivesAt.UTC().Format(time.DateTime),
			a.ClaimedAt.UTC().Format(time.DateTime),
			a.Fault,
		})
	}
	table.Render()
}
