package ws

import (
	"context"
	"testing"
	"time"

	"Hegemony/internal/game/app"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/memory"
	"Hegemony/internal/game/interfaces/handler"
	"Hegemony/internal/shared/transport/ws"
	"Hegemony/modules/kit/logx"
)

type fakeConn struct {
	props map[string]any
	done  chan struct{}
}

func newFakeConn(uid int64) *fakeConn {
	c := &fakeConn{props: map[string]any{}, done: make(chan struct{})}
	if uid > 0 {
		c.props[ws.ConnKeyUID] = uid
	}
	return c
}

func (c *fakeConn) SetProperty(key string, value any) { c.props[key] = value }
func (c *fakeConn) GetProperty(key string) any        { return c.props[key] }
func (c *fakeConn) RemoveProperty(key string)         { delete(c.props, key) }
func (c *fakeConn) Addr() string                      { return "test" }
func (c *fakeConn) Push(string, any) bool             { return true }
func (c *fakeConn) Close()                            {}
func (c *fakeConn) Done() <-chan struct{}             { return c.done }

func newRouter(t *testing.T) (*ws.Router, *memory.ReportRepo) {
	t.Helper()
	repo := memory.NewReportRepo()
	g := handler.NewGame(app.Deps{Store: memory.NewStore()}, app.NewReports(repo, nil))
	r := ws.NewRouter(logx.Nop())
	NewWsHandler(g).RegisterRoutes(r)

	rep := &domain.Report{
		ID:         "r-1",
		Kind:       domain.ReportScout,
		Outcome:    domain.OutcomeScouted,
		OccurredAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		AttackerID: 7,
		Recipients: []domain.PlayerID{7},
	}
	if err := repo.Save(context.Background(), rep); err != nil {
		t.Fatalf("期望写入战报成功, err=%v", err)
	}
	return r, repo
}

func dispatch(r *ws.Router, uid int64, name string, msg any) *ws.RespBody {
	resp := &ws.WsMsgResp{Body: &ws.RespBody{Name: name}}
	r.Dispatch(&ws.WsMsgReq{Body: &ws.ReqBody{Name: name, Msg: msg}, Conn: newFakeConn(uid)}, resp)
	return resp.Body
}

func TestWs_战报列表(t *testing.T) {
	r, _ := newRouter(t)
	got := dispatch(r, 7, "report.list", map[string]any{"limit": "5"})
	list, ok := got.Msg.([]domain.Report)
	if got.Code != 0 || !ok || len(list) != 1 {
		t.Fatalf("期望拿到 1 份战报, got=%+v", got)
	}
	if got := dispatch(r, 8, "report.list", nil); got.Code != 0 {
		t.Fatalf("期望空列表也成功, got=%+v", got)
	}
}

func TestWs_已读与鉴权(t *testing.T) {
	r, repo := newRouter(t)
	if got := dispatch(r, 0, "report.read", map[string]any{"id": "r-1"}); got.Code != 101 {
		t.Fatalf("期望未登录 code=101, got=%+v", got)
	}
	if got := dispatch(r, 7, "report.read", map[string]any{}); got.Code != 100 {
		t.Fatalf("期望缺 id code=100, got=%+v", got)
	}
	if got := dispatch(r, 8, "report.get", map[string]any{"id": "r-1"}); got.Code != 104 {
		t.Fatalf("期望非接收者 code=104, got=%+v", got)
	}
	if got := dispatch(r, 7, "report.read", map[string]any{"id": "r-1"}); got.Code != 0 {
		t.Fatalf("期望已读成功, got=%+v", got)
	}
	stored, _ := repo.Get(context.Background(), "r-1")
	if !stored.IsReadBy(7) {
		t.Fatalf("期望 7 已读")
	}
}

func TestWs_村庄不存在(t *testing.T) {
	r, _ := newRouter(t)
	if got := dispatch(r, 7, "settlement.view", map[string]any{"id": 3}); got.Code != 104 {
		t.Fatalf("期望 code=104, got=%+v", got)
	}
}
