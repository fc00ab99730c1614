package grpc

import (
	"context"
	"fmt"
	"net"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"Hegemony/modules/kit/logx"
)

// ServiceName 引擎在 health 服务里登记的服务名。
const ServiceName = "hegemony.engine"

// Server 引擎的 gRPC 入口，目前只承载 health 服务。
type Server struct {
	srv    *gogrpc.Server
	health *health.Server
}

// NewServer log 为空时不落 access 日志。
func NewServer(log logx.Logger) *Server {
	if log == nil {
		log = logx.Nop()
	}
	srv := gogrpc.NewServer(
		gogrpc.ChainUnaryInterceptor(unaryAccess(log)),
		gogrpc.ChainStreamInterceptor(streamAccess(log)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{srv: srv, health: hs}
}

// SetServing 调度器启动后置为 SERVING，退出前置回 NOT_SERVING。
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Serve 阻塞直到 Stop。
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

// DialHealth 建立 health 连接，caller 会出现在服务端 access 日志里。
func DialHealth(addr, caller string) (*gogrpc.ClientConn, healthpb.HealthClient, error) {
	conn, err := gogrpc.NewClient(addr,
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithChainUnaryInterceptor(clientInterceptor(caller)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dial engine health failed: %w", err)
	}
	return conn, healthpb.NewHealthClient(conn), nil
}

// Check 查询 ServiceName 的状态。
func Check(ctx context.Context, c healthpb.HealthClient) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
