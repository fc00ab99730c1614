package interfaces

import (
	"github.com/gin-gonic/gin"

	"Hegemony/internal/game/app"
	"Hegemony/internal/game/interfaces/handler"
	"Hegemony/internal/game/interfaces/handler/http"
	ws2 "Hegemony/internal/game/interfaces/handler/ws"
	transporthttp "Hegemony/internal/shared/transport/http"
	"Hegemony/internal/shared/transport/http/middleware"
	"Hegemony/internal/shared/transport/ws"
)

type Module struct {
	wsHandler   *ws2.WsHandler
	httpHandler *http.HttpHandler
}

// New parse 为空时 HTTP 用 JWT 校验。
func New(d app.Deps, reports *app.Reports, parse middleware.TokenParser) *Module {
	game := handler.NewGame(d, reports)
	return &Module{
		wsHandler:   ws2.NewWsHandler(game),
		httpHandler: http.NewHttpHandler(game, parse),
	}
}

func (m *Module) WsRegister(r *ws.Router) {
	m.wsHandler.RegisterRoutes(r)
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

var _ ws.Registrar = (*Module)(nil)
var _ transporthttp.Registrar = (*Module)(nil)
