package transport

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"Hegemony/modules/kit/logx"
	"Hegemony/modules/kit/tracex"
)

// Protocol 请求入口，写进 access 日志的 proto 字段。
type Protocol string

const (
	ProtoHTTP Protocol = "http"
	ProtoWS   Protocol = "ws"
	ProtoGRPC Protocol = "grpc"
)

// AccessLog 一次请求的访问日志上下文。
// handler 写入业务码、玩家、失败原因，入口层在请求结束时统一落一条日志。
type AccessLog struct {
	mu      sync.Mutex
	proto   Protocol
	action  string
	start   time.Time
	code    BizCode
	codeSet bool
	reason  string
	player  int64
	extra   []zap.Field
}

type accessLogKey struct{}

// Begin 在 parent 上挂一条 AccessLog 并开一个以协议命名的 span。
// 业务码默认按系统错误记，handler 忘记设置时日志不会出现成功假象。
func Begin(parent context.Context, proto Protocol, action string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if action == "" {
		action = "unknown"
	}
	ctx := tracex.Start(parent, string(proto))
	return context.WithValue(ctx, accessLogKey{}, &AccessLog{
		proto:  proto,
		action: action,
		start:  time.Now(),
		code:   SystemError,
	})
}

// FromContext 取 Begin 挂上的 AccessLog，没有时返回 nil。
func FromContext(ctx context.Context) *AccessLog {
	if ctx == nil {
		return nil
	}
	al, _ := ctx.Value(accessLogKey{}).(*AccessLog)
	return al
}

func SetBizCode(ctx context.Context, code BizCode) {
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.code, al.codeSet = code, true
		al.mu.Unlock()
	}
}

// BizCodeOf 返回 handler 显式设置过的业务码。
func BizCodeOf(ctx context.Context) (BizCode, bool) {
	al := FromContext(ctx)
	if al == nil {
		return 0, false
	}
	al.mu.Lock()
	defer al.mu.Unlock()
	return al.code, al.codeSet
}

// SetErrorReason 空串忽略，已有原因时后写覆盖。
func SetErrorReason(ctx context.Context, reason string) {
	if reason == "" {
		return
	}
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.reason = reason
		al.mu.Unlock()
	}
}

// SetPlayer 认证通过后记下玩家 id。
func SetPlayer(ctx context.Context, player int64) {
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.player = player
		al.mu.Unlock()
	}
}

// AddFields 追加业务字段，比如 army_id、settlement_id。
func AddFields(ctx context.Context, fields ...zap.Field) {
	if len(fields) == 0 {
		return
	}
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.extra = append(al.extra, fields...)
		al.mu.Unlock()
	}
}

// Finish 落 access 日志，入口层 defer 调用，一次请求只调一次。
func Finish(ctx context.Context, log logx.Logger) {
	al := FromContext(ctx)
	if al == nil || log == nil {
		return
	}
	al.mu.Lock()
	fields := make([]zap.Field, 0, 5+len(al.extra))
	fields = append(fields,
		zap.String("proto", string(al.proto)),
		zap.Duration("latency", time.Since(al.start)),
		zap.String("result", resultOf(al.code)),
	)
	if al.player > 0 {
		fields = append(fields, zap.Int64("player_id", al.player))
	}
	if al.code != OK && al.reason != "" {
		fields = append(fields, zap.String("error_reason", al.reason))
	}
	fields = append(fields, al.extra...)
	action, code := al.action, int(al.code)
	al.mu.Unlock()

	logx.ReportAccessWithLoggerContext(ctx, log, action, code, fields...)
}

// resultOf 业务拒绝和系统故障分开统计。
func resultOf(code BizCode) string {
	switch {
	case code == OK:
		return "success"
	case code >= SystemError:
		return "failure"
	default:
		return "rejected"
	}
}
