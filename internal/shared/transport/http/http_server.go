package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Hegemony/internal/shared/transport/http/middleware"
	"Hegemony/modules/kit/logx"
)

// Registrar 业务模块把自己的路由挂到 Group 上。
type Registrar interface {
	HttpRegister(g *gin.RouterGroup)
}

// Options 都可以为零值。
type Options struct {
	// Gatherer /metrics 的数据源，空时用 prometheus 默认注册表。
	Gatherer prometheus.Gatherer
	// Ready /readyz 的探针，空时视为一直就绪。
	Ready func() bool
}

type Server struct {
	engine *gin.Engine
	srv    *nethttp.Server
}

// NewHttpServer 公共路由 /healthz /readyz /metrics，业务路由挂在 Group 下。
func NewHttpServer(addr string, logger logx.Logger, opts Options) *Server {
	if logger == nil {
		logger = logx.Nop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Cors(), middleware.AccessLog(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		if opts.Ready != nil && !opts.Ready() {
			c.JSON(nethttp.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(nethttp.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	return &Server{
		engine: engine,
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Mount 挂非 gin 的 handler，ws 升级走这里。长连接不受 WriteTimeout 约束。
func (s *Server) Mount(path string, h nethttp.Handler) {
	s.engine.GET(path, gin.WrapH(h))
}

// Start 阻塞，Shutdown 后返回 net/http.ErrServerClosed。
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Group() *gin.RouterGroup {
	return &s.engine.RouterGroup
}

func (s *Server) Handler() nethttp.Handler {
	return s.engine
}
