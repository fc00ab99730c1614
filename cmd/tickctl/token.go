package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"Hegemony/internal/shared/security"
)

// newTokenCmd 给联调签发玩家 token，密钥取 JWT_SECRET 或配置里的 jwt_secret。
func newTokenCmd(opts *options) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <player id>",
		Short: "Issue a player token for the HTTP and websocket APIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || uid <= 0 {
				return fmt.Errorf("invalid player id %q", args[0])
			}
			if _, err := opts.loadConfig(); err != nil {
				return err
			}
			token, err := security.Award(uid, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
