package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Hegemony/internal/engine"
	"Hegemony/internal/game/interfaces"
	"Hegemony/internal/shared/logs"
	"Hegemony/internal/shared/serverconfig"
	transportgrpc "Hegemony/internal/shared/transport/grpc"
	transporthttp "Hegemony/internal/shared/transport/http"
	"Hegemony/internal/shared/transport/ws"
	"Hegemony/modules/kit/logx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:   "engine",
		Short: "Hegemony tick engine",
		Long: `Runs the scheduler loops, the HTTP command API with websocket push
and the gRPC health endpoint in one process.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file, defaults to HEGEMONY_CONFIG or configs/conf.yml")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	err := serverconfig.Load(configPath, func(err error) {
		logs.Warn("rules 热更新失败，沿用旧值", zap.Error(err))
	})
	if err != nil {
		return err
	}
	conf := serverconfig.Conf
	if err := logs.Init("engine", conf.Log); err != nil {
		return err
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("conf", conf))
	if !conf.Log.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseLogger := logx.NewZapLogger(logs.Logger())
	eng, err := engine.Build(ctx, engine.Options{
		Conf:       conf,
		Log:        baseLogger,
		Zap:        logs.Logger(),
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() {
		if err := eng.Close(context.Background()); err != nil {
			logs.Warn("释放资源失败", zap.Error(err))
		}
	}()

	gameModule := interfaces.New(eng.Deps, eng.Reports, nil)
	wsRouter := ws.NewRouter(baseLogger)
	wsModules := []ws.Registrar{
		gameModule,
	}
	for _, m := range wsModules {
		m.WsRegister(wsRouter)
	}

	var ready atomic.Bool
	httpServer := transporthttp.NewHttpServer(addr(conf.HTTPServer.Host, conf.HTTPServer.Port), baseLogger, transporthttp.Options{
		Gatherer: prometheus.DefaultGatherer,
		Ready:    ready.Load,
	})
	httpModules := []transporthttp.Registrar{
		gameModule,
	}
	for _, m := range httpModules {
		m.HttpRegister(httpServer.Group())
	}

	wsServer := ws.NewServer(wsRouter, eng.Hub, ws.Options{
		NeedSecret: conf.WS.NeedSecret,
		OutBuffer:  conf.WS.OutBuffer,
	}, baseLogger)
	wsPath := conf.WS.Path
	if wsPath == "" {
		wsPath = "/ws"
	}
	httpServer.Mount(wsPath, wsServer)

	grpcAddr := addr(conf.GRPCServer.Host, conf.GRPCServer.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", grpcAddr, err)
	}
	grpcServer := transportgrpc.NewServer(baseLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Scheduler.Run(gctx)
	})
	g.Go(func() error {
		logs.Info("http server started", zap.String("addr", addr(conf.HTTPServer.Host, conf.HTTPServer.Port)), zap.String("ws", wsPath))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logs.Info("grpc health started", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logs.Info("收到退出信号，准备优雅退出")
		ready.Store(false)
		grpcServer.SetServing(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logs.Warn("http shutdown failed", zap.Error(err))
		}
		grpcServer.Stop()
		return nil
	})
	grpcServer.SetServing(true)
	ready.Store(true)

	if err := g.Wait(); err != nil {
		logs.Error("服务异常退出", zap.Error(err))
		return err
	}
	return nil
}

func addr(host string, port int) string {
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, port)
}
