package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"Hegemony/internal/game/domain"
)

func newReleaseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "release <army id>",
		Short: "Clear a faulted claim so the next army pass picks the army up again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid army id %q", args[0])
			}
			ctx := cmd.Context()
			eng, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if err := eng.Store.ReleaseArmyClaim(ctx, domain.ArmyID(id)); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "army %d released\n", id)
			return nil
		},
	}
}
