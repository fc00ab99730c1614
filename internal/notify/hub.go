package notify

import (
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/shared/transport/ws"
	"Hegemony/modules/kit/logx"
)

const defaultAskTimeout = 3 * time.Second

// PushPrefix 推送消息名前缀，完整名如 event.ArmyArrived。
const PushPrefix = "event."

// Hub 通知中心。会话表只在 hubActor 里读写，外部全部通过消息投递。
type Hub struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	pid     *protoactor.PID
	timeout time.Duration
	metrics *metrics
	log     logx.Logger
}

var (
	_ port.Notifier  = (*Hub)(nil)
	_ ws.SessionHook = (*Hub)(nil)
)

// NewHub reg 为空时不注册指标。
func NewHub(l logx.Logger, reg prometheus.Registerer) *Hub {
	if l == nil {
		l = logx.Nop()
	}
	m := newMetrics(reg)
	system := protoactor.NewActorSystem()
	root := system.Root
	pid := root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return newHubActor(l, m)
	}))
	return &Hub{system: system, root: root, pid: pid, timeout: defaultAskTimeout, metrics: m, log: l}
}

// Publish 发送即忘，不等待推送结果。
func (h *Hub) Publish(events ...domain.Event) {
	if h == nil || len(events) == 0 {
		return
	}
	h.root.Send(h.pid, &publishMsg{events: events})
}

func (h *Hub) OnOpen(player int64, conn ws.WSConn) {
	h.root.Send(h.pid, &openSession{player: domain.PlayerID(player), conn: conn})
}

func (h *Hub) OnClose(player int64, conn ws.WSConn) {
	h.root.Send(h.pid, &closeSession{player: domain.PlayerID(player), conn: conn})
}

// Sessions 玩家当前在线的连接数。
func (h *Hub) Sessions(player domain.PlayerID) int {
	res, err := h.root.RequestFuture(h.pid, &countSessions{player: player}, h.timeout).Result()
	if err != nil {
		h.log.Warn("notify hub count sessions failed", zap.Error(err))
		return 0
	}
	n, _ := res.(int)
	return n
}

func (h *Hub) Shutdown() {
	if h == nil {
		return
	}
	if h.root != nil && h.pid != nil {
		_ = h.root.StopFuture(h.pid).Wait()
	}
	if h.system != nil {
		h.system.Shutdown()
	}
}
