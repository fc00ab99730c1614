package handler

import (
	"Hegemony/internal/game/app"
	"Hegemony/modules/kit/logx"
)

// Game 对外接口层共用的用例集合，HTTP 和 WS 两种入口都只调它。
type Game struct {
	Movement     *app.Movement
	Construction *app.Construction
	Views        *app.Views
	Reports      *app.Reports
	Log          logx.Logger
}

func NewGame(d app.Deps, reports *app.Reports) *Game {
	log := d.Log
	if log == nil {
		log = logx.Nop()
	}
	return &Game{
		Movement:     app.NewMovement(d),
		Construction: app.NewConstruction(d),
		Views:        app.NewViews(d),
		Reports:      reports,
		Log:          log,
	}
}
