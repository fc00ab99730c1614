package tracex

import (
	"context"
	"testing"
)

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t-1")
	if got, ok := TraceIDFrom(ctx); !ok || got != "t-1" {
		t.Fatalf("期望 TraceIDFrom round-trip 成功，got=%q ok=%v", got, ok)
	}
}

func TestStart_保留已有trace只换span(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t-keep")
	ctx = Start(ctx, "tick.army")
	if got, _ := TraceIDFrom(ctx); got != "t-keep" {
		t.Fatalf("期望保留 trace_id, got=%q", got)
	}
	if got, _ := SpanIDFrom(ctx); got != "tick.army" {
		t.Fatalf("期望 span=tick.army, got=%q", got)
	}

	fresh := Start(context.Background(), "")
	if got, ok := TraceIDFrom(fresh); !ok || len(got) != 32 {
		t.Fatalf("期望生成 32 位 hex trace_id, got=%q", got)
	}
}
