package ws

import (
	"context"

	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/interfaces/handler"
	"Hegemony/internal/game/interfaces/handler/dto"
	"Hegemony/internal/shared/transport"
	"Hegemony/internal/shared/transport/ws"
)

// WsHandler 长连接上的只读查询；指令走 HTTP。
type WsHandler struct {
	game *handler.Game
}

func NewWsHandler(g *handler.Game) *WsHandler {
	return &WsHandler{game: g}
}

func (h *WsHandler) RegisterRoutes(r *ws.Router) {
	reportGroup := r.Group("report")
	reportGroup.Handle("list", h.reportList)
	reportGroup.Handle("get", h.reportGet)
	reportGroup.Handle("read", h.reportRead)

	settlementGroup := r.Group("settlement")
	settlementGroup.Handle("view", h.settlementView)

	armyGroup := r.Group("army")
	armyGroup.Handle("list", h.armyList)
}

func (h *WsHandler) reportList(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	player, ok := h.player(wsReq, wsResp)
	if !ok {
		return
	}
	var req dto.ReportListReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	list, err := h.game.Reports.List(ctx, player, req.Limit)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	h.ok(wsResp, list)
}

func (h *WsHandler) reportGet(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	player, id, ok := h.reportID(wsReq, wsResp)
	if !ok {
		return
	}
	r, err := h.game.Reports.Get(ctx, player, id)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	h.ok(wsResp, r)
}

func (h *WsHandler) reportRead(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	player, id, ok := h.reportID(wsReq, wsResp)
	if !ok {
		return
	}
	if err := h.game.Reports.MarkRead(ctx, player, id); err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	h.ok(wsResp, nil)
}

func (h *WsHandler) settlementView(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	player, ok := h.player(wsReq, wsResp)
	if !ok {
		return
	}
	var req dto.SettlementReq
	if err := ws.BindJSON(wsReq, &req); err != nil || req.ID <= 0 {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	view, err := h.game.Views.Settlement(ctx, player, domain.SettlementID(req.ID))
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	h.ok(wsResp, dto.FromSettlementView(view))
}

func (h *WsHandler) armyList(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	player, ok := h.player(wsReq, wsResp)
	if !ok {
		return
	}
	list, err := h.game.Views.Armies(ctx, player)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	h.ok(wsResp, dto.FromArmies(list))
}

func (h *WsHandler) player(wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) (domain.PlayerID, bool) {
	if wsReq == nil || wsReq.Body == nil || wsReq.Conn == nil || wsResp == nil || wsResp.Body == nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return 0, false
	}
	uid, ok := ws.PlayerID(wsReq.Conn)
	if !ok {
		h.fail(wsResp, transport.Unauthorized, "未登录")
		return 0, false
	}
	return domain.PlayerID(uid), true
}

func (h *WsHandler) reportID(wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) (domain.PlayerID, string, bool) {
	player, ok := h.player(wsReq, wsResp)
	if !ok {
		return 0, "", false
	}
	var req dto.ReportIDReq
	if err := ws.BindJSON(wsReq, &req); err != nil || req.ID == "" {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return 0, "", false
	}
	return player, req.ID, true
}

func (h *WsHandler) ok(resp *ws.WsMsgResp, data any) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = transport.OK
	resp.Body.Msg = data
}

func (h *WsHandler) fail(resp *ws.WsMsgResp, code int, msg string) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = code
	if msg != "" {
		resp.Body.Msg = msg
	}
}

func (h *WsHandler) error(ctx context.Context, resp *ws.WsMsgResp, err error) {
	code, msg := handler.HandleError(ctx, h.game.Log, err)
	h.fail(resp, code, msg)
}
