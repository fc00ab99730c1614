package transport

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"Hegemony/modules/kit/logx"
	"Hegemony/modules/kit/tracex"
)

func TestAccessLog_默认记系统错误(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := Begin(context.Background(), ProtoWS, "WS army.list")
	if _, ok := BizCodeOf(ctx); ok {
		t.Fatalf("期望未设置业务码时 ok=false")
	}
	Finish(ctx, logx.NewZapLogger(zap.New(core)))

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("期望 1 条 ERROR 日志, got=%v", entries)
	}
	if got := entries[0].ContextMap()["result"]; got != "failure" {
		t.Fatalf("期望 result=failure, got=%v", got)
	}
}

func TestAccessLog_业务拒绝带玩家与原因(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := Begin(context.Background(), ProtoHTTP, "POST /api/armies")
	SetPlayer(ctx, 42)
	SetBizCode(ctx, InsufficientTroops)
	SetErrorReason(ctx, "TROOPS_NOT_ENOUGH")
	SetErrorReason(ctx, "")
	AddFields(ctx, zap.Int64("settlement_id", 7))
	Finish(ctx, logx.NewZapLogger(zap.New(core)))

	if code, ok := BizCodeOf(ctx); !ok || code != InsufficientTroops {
		t.Fatalf("期望业务码 202, got=%v ok=%v", code, ok)
	}
	e := logs.All()[0]
	if e.Level != zapcore.WarnLevel {
		t.Fatalf("期望 WARN, got=%v", e.Level)
	}
	fields := e.ContextMap()
	if fields["result"] != "rejected" || fields["player_id"] != int64(42) {
		t.Fatalf("期望 rejected/player_id=42, got=%v", fields)
	}
	if fields["error_reason"] != "TROOPS_NOT_ENOUGH" || fields["settlement_id"] != int64(7) {
		t.Fatalf("期望带原因与业务字段, got=%v", fields)
	}
	if fields["proto"] != "http" {
		t.Fatalf("期望 proto=http, got=%v", fields["proto"])
	}
}

func TestBegin_保留上游trace(t *testing.T) {
	parent := tracex.WithTraceID(context.Background(), "tick-abc")
	ctx := Begin(parent, ProtoGRPC, "")
	if tid, _ := tracex.TraceIDFrom(ctx); tid != "tick-abc" {
		t.Fatalf("期望沿用上游 trace_id, got=%q", tid)
	}
	if sid, _ := tracex.SpanIDFrom(ctx); sid != "grpc" {
		t.Fatalf("期望 span=grpc, got=%q", sid)
	}
	if al := FromContext(ctx); al == nil || al.action != "unknown" {
		t.Fatalf("期望空 action 记为 unknown")
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("期望无 AccessLog 的 ctx 返回 nil")
	}
}
