package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/logx"
)

type fakeConn struct {
	addr string
	full bool

	mu     sync.Mutex
	pushed []string
}

func (c *fakeConn) SetProperty(key string, value any) {}
func (c *fakeConn) GetProperty(key string) any        { return nil }
func (c *fakeConn) RemoveProperty(key string)         {}
func (c *fakeConn) Addr() string                      { return c.addr }
func (c *fakeConn) Close()                            {}
func (c *fakeConn) Done() <-chan struct{}             { return nil }

func (c *fakeConn) Push(name string, data any) bool {
	if c.full {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed = append(c.pushed, name)
	return true
}

func (c *fakeConn) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.pushed...)
}

func TestHub_按接收者扇出(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHub(logx.Nop(), reg)
	defer h.Shutdown()

	a7, b7, c8, d9 := &fakeConn{addr: "a7"}, &fakeConn{addr: "b7"}, &fakeConn{addr: "c8"}, &fakeConn{addr: "d9"}
	h.OnOpen(7, a7)
	h.OnOpen(7, b7)
	h.OnOpen(8, c8)
	h.OnOpen(9, d9)

	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	h.Publish(
		domain.Event{Kind: domain.EventUnderAttack, SettlementID: 2, Recipients: []domain.PlayerID{8}, At: at},
		domain.Event{Kind: domain.EventArmyArrived, SettlementID: 1, ArmyID: 5, Recipients: []domain.PlayerID{7, 8}, At: at},
	)
	// 同一邮箱按序处理，计数请求返回时发布已处理完
	if n := h.Sessions(7); n != 2 {
		t.Fatalf("期望玩家 7 两个会话, got=%d", n)
	}

	for _, c := range []*fakeConn{a7, b7} {
		if got := c.names(); len(got) != 1 || got[0] != "event.ArmyArrived" {
			t.Fatalf("期望 %s 收到 ArmyArrived, got=%v", c.addr, got)
		}
	}
	if got := c8.names(); len(got) != 2 || got[0] != "event.UnderAttack" {
		t.Fatalf("期望玩家 8 按顺序收到两条, got=%v", got)
	}
	if got := d9.names(); len(got) != 0 {
		t.Fatalf("期望非接收者收不到, got=%v", got)
	}
	if v := testutil.ToFloat64(h.metrics.online); v != 4 {
		t.Fatalf("期望在线 4, got=%v", v)
	}
}

func TestHub_断开后不再推送(t *testing.T) {
	h := NewHub(logx.Nop(), nil)
	defer h.Shutdown()

	c := &fakeConn{addr: "a7"}
	h.OnOpen(7, c)
	h.OnClose(7, c)
	h.OnClose(7, c)
	h.Publish(domain.Event{Kind: domain.EventArmyArrived, Recipients: []domain.PlayerID{7}})

	if n := h.Sessions(7); n != 0 {
		t.Fatalf("期望会话已移除, got=%d", n)
	}
	if got := c.names(); len(got) != 0 {
		t.Fatalf("期望断开后不推送, got=%v", got)
	}
}

func TestHub_推送失败不影响其他连接(t *testing.T) {
	h := NewHub(logx.Nop(), nil)
	defer h.Shutdown()

	full, ok := &fakeConn{addr: "full", full: true}, &fakeConn{addr: "ok"}
	h.OnOpen(7, full)
	h.OnOpen(7, ok)
	h.Publish(domain.Event{Kind: domain.EventTroopsStarved, Recipients: []domain.PlayerID{7}})
	_ = h.Sessions(7)

	if got := ok.names(); len(got) != 1 {
		t.Fatalf("期望正常连接收到推送, got=%v", got)
	}
}
