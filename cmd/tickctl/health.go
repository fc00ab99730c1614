package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	transportgrpc "Hegemony/internal/shared/transport/grpc"
)

func newHealthCmd(opts *options) *cobra.Command {
	var (
		target  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the engine gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				conf, err := opts.loadConfig()
				if err != nil {
					return err
				}
				host := conf.GRPCServer.Host
				if host == "" || host == "0.0.0.0" {
					host = "127.0.0.1"
				}
				target = fmt.Sprintf("%s:%d", host, conf.GRPCServer.Port)
			}
			conn, client, err := transportgrpc.DialHealth(target, "tickctl")
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			status, err := transportgrpc.Check(ctx, client)
			if err != nil {
				return fmt.Errorf("health check %s: %w", target, err)
			}
			out := cmd.OutOrStdout()
			if status != healthpb.HealthCheckResponse_SERVING {
				color.New(color.FgRed, color.Bold).Fprintf(out, "%s %s\n", target, status)
				return fmt.Errorf("engine not serving: %s", status)
			}
			color.New(color.FgGreen, color.Bold).Fprintf(out, "%s %s\n", target, status)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "addr", "", "engine grpc address, defaults to grpcserver in config")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "probe timeout")
	return cmd
}
