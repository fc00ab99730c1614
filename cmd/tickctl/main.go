package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Hegemony/internal/engine"
	"Hegemony/internal/shared/logs"
	"Hegemony/internal/shared/serverconfig"
	"Hegemony/modules/kit/logx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "tickctl",
		Short:        "Operator tool for the Hegemony tick engine",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file, defaults to HEGEMONY_CONFIG or configs/conf.yml")
	rootCmd.AddCommand(
		newRunCmd(opts),
		newStuckCmd(opts),
		newReleaseCmd(opts),
		newHealthCmd(opts),
		newTokenCmd(opts),
	)
	return rootCmd
}

func (o *options) loadConfig() (serverconfig.Config, error) {
	if err := serverconfig.Load(o.configPath, nil); err != nil {
		return serverconfig.Config{}, err
	}
	conf := serverconfig.Conf
	if err := logs.Init("tickctl", conf.Log); err != nil {
		return serverconfig.Config{}, err
	}
	return conf, nil
}

// openEngine 和引擎进程用同一套装配，但不注册指标、不起任何服务。
func (o *options) openEngine(ctx context.Context) (*engine.Engine, error) {
	conf, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return engine.Build(ctx, engine.Options{
		Conf: conf,
		Log:  logx.NewZapLogger(logs.Logger()),
		Zap:  logs.Logger(),
	})
}
