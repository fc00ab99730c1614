package grpc

import (
	"context"

	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"Hegemony/internal/shared/transport"
	"Hegemony/modules/kit/logx"
	"Hegemony/modules/kit/tracex"
)

// metadata 里的链路字段。
const (
	mdTraceID = "x-trace-id"
	mdSpanID  = "x-span-id"
	mdCaller  = "x-caller"
)

// clientInterceptor 出站时把 ctx 里的 trace 和调用方名字写进 metadata。
func clientInterceptor(caller string) gogrpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *gogrpc.ClientConn,
		invoker gogrpc.UnaryInvoker, opts ...gogrpc.CallOption) error {
		return invoker(outgoing(ctx, caller), method, req, reply, cc, opts...)
	}
}

// unaryAccess 入站恢复 trace，并按 gRPC 状态码落一条 access 日志。
func unaryAccess(log logx.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		ctx = begin(ctx, info.FullMethod)
		resp, err := handler(ctx, req)
		finish(ctx, log, err)
		return resp, err
	}
}

// streamAccess health Watch 这类长连接在流结束时才落日志。
func streamAccess(log logx.Logger) gogrpc.StreamServerInterceptor {
	return func(srv any, ss gogrpc.ServerStream, info *gogrpc.StreamServerInfo, handler gogrpc.StreamHandler) error {
		ctx := begin(ss.Context(), info.FullMethod)
		err := handler(srv, &tracedStream{ServerStream: ss, ctx: ctx})
		finish(ctx, log, err)
		return err
	}
}

type tracedStream struct {
	gogrpc.ServerStream
	ctx context.Context
}

func (s *tracedStream) Context() context.Context { return s.ctx }

func begin(ctx context.Context, method string) context.Context {
	ctx, caller := incoming(ctx)
	ctx = transport.Begin(ctx, transport.ProtoGRPC, "GRPC "+method)
	if caller != "" {
		transport.AddFields(ctx, zap.String("caller", caller))
	}
	return ctx
}

func finish(ctx context.Context, log logx.Logger, err error) {
	transport.SetBizCode(ctx, bizCodeOf(err))
	if err != nil {
		transport.SetErrorReason(ctx, status.Code(err).String())
	}
	transport.Finish(ctx, log)
}

// bizCodeOf gRPC 状态码折算成对外业务码。
func bizCodeOf(err error) transport.BizCode {
	switch status.Code(err) {
	case codes.OK:
		return transport.OK
	case codes.InvalidArgument:
		return transport.InvalidParam
	case codes.Unauthenticated:
		return transport.Unauthorized
	case codes.PermissionDenied:
		return transport.Forbidden
	case codes.NotFound:
		return transport.NotFound
	default:
		return transport.SystemError
	}
}

func outgoing(ctx context.Context, caller string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	kv := make([]string, 0, 6)
	if tid, ok := tracex.TraceIDFrom(ctx); ok {
		kv = append(kv, mdTraceID, tid)
	}
	if sid, ok := tracex.SpanIDFrom(ctx); ok {
		kv = append(kv, mdSpanID, sid)
	}
	if caller != "" {
		kv = append(kv, mdCaller, caller)
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

// incoming 从入站 metadata 恢复 trace，返回调用方名字。
func incoming(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		return context.Background(), ""
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, ""
	}
	first := func(key string) string {
		if v := md.Get(key); len(v) > 0 {
			return v[0]
		}
		return ""
	}
	if tid := first(mdTraceID); tid != "" {
		ctx = tracex.WithTraceID(ctx, tid)
	}
	if sid := first(mdSpanID); sid != "" {
		ctx = tracex.WithSpanID(ctx, sid)
	}
	return ctx, first(mdCaller)
}
