package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是各组件依赖的最小日志接口：结构化字段 + ctx 透传 trace/span。
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}

// Nop 返回丢弃一切输出的 Logger。
func Nop() Logger {
	return NewZapLogger(nil)
}
