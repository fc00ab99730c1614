package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Hegemony/internal/shared/security"
	"Hegemony/modules/kit/logx"
)

// Options 会话参数，对应配置里的 ws 段。
type Options struct {
	NeedSecret bool
	OutBuffer  int
}

type Server struct {
	router *Router
	hook   SessionHook
	opts   Options
	parse  func(token string) (int64, error)
	log    logx.Logger
}

func NewServer(r *Router, hook SessionHook, opts Options, l logx.Logger) *Server {
	if l == nil {
		l = logx.Nop()
	}
	return &Server{
		router: r,
		hook:   hook,
		opts:   opts,
		parse:  parseJWT,
		log:    l,
	}
}

// WithTokenParser 替换 token 校验，测试用。
func (s *Server) WithTokenParser(parse func(token string) (int64, error)) *Server {
	if parse != nil {
		s.parse = parse
	}
	return s
}

// ServeHTTP 先校验 ?token=，再升级连接。
func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	uid, err := s.parse(req.URL.Query().Get("token"))
	if err != nil || uid <= 0 {
		http.Error(resp, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		// 允许所有CORS跨域请求
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	wsConn, err := upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", zap.Error(err))
		return
	}

	s.log.Info("websocket upgrade success", zap.Int64("player_id", uid))

	session := NewWsServer(wsConn, s.opts, s.log)
	session.SetProperty(ConnKeyUID, uid)
	session.Router(s.router)
	if s.opts.NeedSecret {
		session.handshake()
	}
	session.Run()

	if s.hook != nil {
		s.hook.OnOpen(uid, session)
		go func() {
			<-session.Done()
			s.hook.OnClose(uid, session)
		}()
	}
}

func parseJWT(token string) (int64, error) {
	claims, err := security.ParseToken(token)
	if err != nil {
		return 0, err
	}
	return claims.Uid, nil
}
