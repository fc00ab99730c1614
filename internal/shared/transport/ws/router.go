package ws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"Hegemony/internal/shared/logs"
	"Hegemony/internal/shared/transport"
	"Hegemony/modules/kit/logx"
)

type HandlerFunc func(ctx context.Context, req *WsMsgReq, resp *WsMsgResp)

// Registrar 业务模块把自己的路由挂到 Router 上。
type Registrar interface {
	WsRegister(r *Router)
}

// Group 同一前缀下的一组路由，report.list 里的 report。
type Group struct {
	prefix string
	router *Router
}

func (g *Group) Handle(name string, h HandlerFunc) {
	g.router.routes[g.prefix+"."+name] = h
}

// Router 消息名到 handler 的映射。注册只在启动期进行，分发期只读。
type Router struct {
	routes map[string]HandlerFunc
	log    logx.Logger
}

func NewRouter(l logx.Logger) *Router {
	if l == nil {
		l = logx.NewZapLogger(logs.Logger())
	}
	return &Router{routes: make(map[string]HandlerFunc), log: l}
}

func (r *Router) Group(prefix string) *Group {
	return &Group{prefix: prefix, router: r}
}

// Routes 已注册的消息名，按字典序。
func (r *Router) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for name := range r.routes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch 按 req.Body.Name 找 handler 执行，每条消息落一条 access 日志。
// handler panic 时当作系统错误回包，连接不断。
func (r *Router) Dispatch(req *WsMsgReq, resp *WsMsgResp) {
	if resp == nil || resp.Body == nil {
		return
	}
	name := ""
	if req != nil && req.Body != nil {
		name = req.Body.Name
	}
	ctx := transport.Begin(context.Background(), transport.ProtoWS, "WS "+name)
	if req != nil && req.Conn != nil {
		if uid, ok := req.Conn.GetProperty(ConnKeyUID).(int64); ok {
			transport.SetPlayer(ctx, uid)
		}
	}
	resp.Body.Code = transport.SystemError
	resp.Body.Msg = nil

	defer func() {
		if p := recover(); p != nil {
			resp.Body.Code = transport.SystemError
			resp.Body.Msg = "系统繁忙，请稍后重试"
			transport.SetErrorReason(ctx, "HANDLER_PANIC")
			r.log.WithContext(ctx).Error("ws handler panic",
				zap.String("route", name), zap.String("panic", fmt.Sprint(p)), zap.Stack("stack"))
		}
		transport.SetBizCode(ctx, transport.BizCode(resp.Body.Code))
		transport.Finish(ctx, r.log)
	}()

	if req == nil || req.Body == nil {
		r.reject(ctx, resp, "参数有误")
		return
	}
	h, msg := r.lookup(name)
	if h == nil {
		r.reject(ctx, resp, msg)
		return
	}
	h(ctx, req, resp)
}

func (r *Router) lookup(name string) (HandlerFunc, string) {
	prefix, handler, ok := strings.Cut(name, ".")
	if !ok || prefix == "" || handler == "" || strings.Contains(handler, ".") {
		return nil, "路由参数有误"
	}
	h := r.routes[name]
	if h == nil {
		return nil, "路由不存在"
	}
	return h, ""
}

func (r *Router) reject(ctx context.Context, resp *WsMsgResp, msg string) {
	transport.SetErrorReason(ctx, "ROUTE_INVALID")
	resp.Body.Code = transport.InvalidParam
	resp.Body.Msg = msg
}
