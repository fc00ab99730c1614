package logx

import (
	"context"
	"errors"
	"testing"

	"Hegemony/modules/kit/errx"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	e := errx.NewSys("SYS_INTERNAL", "服务器内部错误").
		WithData("army_id", int64(7)).
		WithCause(errors.New("db down"))

	meta := BuildErrorLog(e)
	if meta.Code != "SYS_INTERNAL" || meta.Msg == "" {
		t.Fatalf("期望 code/msg 被提取, got=%+v", meta)
	}
	if meta.Data["army_id"] != int64(7) {
		t.Fatalf("期望 data 包含 army_id=7, got=%v", meta.Data)
	}
	if len(meta.CauseChain) == 0 {
		t.Fatalf("期望 cause 链非空")
	}
	if meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("期望栈信息非空 origin=%q", meta.Origin)
	}
}

func TestReportIntegrity_带告警标记(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	err := errx.ErrIntegrity.WithData("army_id", 9).WithCause(errors.New("boom"))
	ReportIntegrityWithLoggerContext(context.Background(), l, NewSysLog("tick.army.process", err))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条日志, got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["err_type"] != "integrity" || fields["alert"] != true {
		t.Fatalf("期望 err_type=integrity alert=true, got=%v", fields)
	}
	if fields["error_code"] != string(errx.CodeIntegrity) {
		t.Fatalf("期望 error_code=%s, got=%v", errx.CodeIntegrity, fields["error_code"])
	}
}

func TestReportAccess_按业务码分级(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ReportAccessWithLoggerContext(context.Background(), l, "GET /x", 0)
	ReportAccessWithLoggerContext(context.Background(), l, "GET /x", 201)
	ReportAccessWithLoggerContext(context.Background(), l, "GET /x", 500)

	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range logs.All() {
		if e.Level != want[i] {
			t.Fatalf("第 %d 条期望 %v, got=%v", i, want[i], e.Level)
		}
	}
}
