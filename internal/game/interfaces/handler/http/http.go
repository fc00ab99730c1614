package http

import (
	"context"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Hegemony/internal/game/app"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/interfaces/handler"
	"Hegemony/internal/game/interfaces/handler/dto"
	"Hegemony/internal/shared/transport"
	"Hegemony/internal/shared/transport/http/middleware"
)

type HttpHandler struct {
	game *handler.Game
	auth gin.HandlerFunc
}

// NewHttpHandler parse 为空时用 JWT 校验。
func NewHttpHandler(g *handler.Game, parse middleware.TokenParser) *HttpHandler {
	return &HttpHandler{game: g, auth: middleware.Auth(parse)}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	api := group.Group("/api", h.auth)

	settlements := api.Group("/settlements")
	settlements.GET("/:id", h.Settlement)
	settlements.POST("/:id/training", h.StartTraining)
	settlements.POST("/:id/upgrades", h.StartUpgrade)

	api.DELETE("/training/:id", h.CancelTraining)

	armies := api.Group("/armies")
	armies.GET("", h.Armies)
	armies.POST("", h.Dispatch)
	armies.POST("/:id/recall", h.Recall)
	armies.POST("/:id/cancel-support", h.CancelSupport)

	reports := api.Group("/reports")
	reports.GET("", h.Reports)
	reports.GET("/:id", h.Report)
	reports.POST("/:id/read", h.MarkRead)
}

func (h *HttpHandler) Settlement(c *gin.Context) {
	player, id, ok := h.playerAndID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	view, err := h.game.Views.Settlement(ctx, player, domain.SettlementID(id))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromSettlementView(view))
}

func (h *HttpHandler) Armies(c *gin.Context) {
	player, ok := h.player(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	list, err := h.game.Views.Armies(ctx, player)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromArmies(list))
}

func (h *HttpHandler) Dispatch(c *gin.Context) {
	player, ok := h.player(c)
	if !ok {
		return
	}
	var req dto.DispatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	army, err := h.game.Movement.Dispatch(ctx, app.DispatchCommand{
		PlayerID: player,
		OriginID: domain.SettlementID(req.OriginID),
		Dest:     domain.Point{X: req.X, Y: req.Y},
		Mission:  domain.MissionKind(req.Mission),
		Troops:   req.ToTroops(),
	})
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromArmy(*army))
}

func (h *HttpHandler) Recall(c *gin.Context) {
	player, id, ok := h.playerAndID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	army, err := h.game.Movement.Recall(ctx, player, domain.ArmyID(id))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromArmy(*army))
}

func (h *HttpHandler) CancelSupport(c *gin.Context) {
	player, id, ok := h.playerAndID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	army, err := h.game.Movement.CancelSupport(ctx, player, domain.ArmyID(id))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromArmy(*army))
}

func (h *HttpHandler) StartTraining(c *gin.Context) {
	player, id, ok := h.playerAndID(c)
	if !ok {
		return
	}
	var req dto.TrainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	it, err := h.game.Construction.StartTraining(ctx, player, domain.SettlementID(id), domain.UnitType(req.Unit), req.Count)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromTraining(*it))
}

func (h *HttpHandler) CancelTraining(c *gin.Context) {
	player, id, ok := h.playerAndID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.game.Construction.CancelTraining(ctx, player, domain.QueueItemID(id)); err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, nil)
}

func (h *HttpHandler) StartUpgrade(c *gin.Context) {
	player, id, ok := h.playerAndID(c)
	if !ok {
		return
	}
	var req dto.UpgradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	it, err := h.game.Construction.StartUpgrade(ctx, player, domain.SettlementID(id), domain.BuildingType(req.Building))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, dto.FromUpgrade(*it))
}

func (h *HttpHandler) Reports(c *gin.Context) {
	player, ok := h.player(c)
	if !ok {
		return
	}
	var req dto.ReportListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	list, err := h.game.Reports.List(ctx, player, req.Limit)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, list)
}

func (h *HttpHandler) Report(c *gin.Context) {
	player, ok := h.player(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	r, err := h.game.Reports.Get(ctx, player, c.Param("id"))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, r)
}

func (h *HttpHandler) MarkRead(c *gin.Context) {
	player, ok := h.player(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.game.Reports.MarkRead(ctx, player, c.Param("id")); err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, nil)
}

func (h *HttpHandler) player(c *gin.Context) (domain.PlayerID, bool) {
	uid, ok := middleware.PlayerID(c)
	if !ok {
		h.fail(c, transport.Unauthorized, "未登录")
		return 0, false
	}
	return domain.PlayerID(uid), true
}

// playerAndID 同时取登录玩家和路径里的 :id。
func (h *HttpHandler) playerAndID(c *gin.Context) (domain.PlayerID, int64, bool) {
	player, ok := h.player(c)
	if !ok {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, transport.InvalidParam, "id 有误")
		return 0, 0, false
	}
	return player, id, true
}

func (h *HttpHandler) ok(c *gin.Context, data any) {
	transport.SetBizCode(c.Request.Context(), transport.OK)
	c.JSON(nethttp.StatusOK, dto.Success(transport.OK, data))
}

func (h *HttpHandler) fail(c *gin.Context, code int, msg string) {
	transport.SetBizCode(c.Request.Context(), transport.BizCode(code))
	c.JSON(nethttp.StatusOK, dto.Error(code, msg))
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, err error) {
	code, msg := handler.HandleError(ctx, h.game.Log, err)
	h.fail(c, code, msg)
}
