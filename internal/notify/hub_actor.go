package notify

import (
	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"Hegemony/internal/game/domain"
	"Hegemony/internal/shared/transport/ws"
	"Hegemony/modules/kit/logx"
)

type publishMsg struct {
	events []domain.Event
}

type openSession struct {
	player domain.PlayerID
	conn   ws.WSConn
}

type closeSession struct {
	player domain.PlayerID
	conn   ws.WSConn
}

type countSessions struct {
	player domain.PlayerID
}

type hubActor struct {
	sessions map[domain.PlayerID]map[ws.WSConn]struct{}
	metrics  *metrics
	log      logx.Logger
}

func newHubActor(l logx.Logger, m *metrics) *hubActor {
	return &hubActor{
		sessions: make(map[domain.PlayerID]map[ws.WSConn]struct{}),
		metrics:  m,
		log:      l,
	}
}

func (a *hubActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *openSession:
		conns := a.sessions[msg.player]
		if conns == nil {
			conns = make(map[ws.WSConn]struct{})
			a.sessions[msg.player] = conns
		}
		conns[msg.conn] = struct{}{}
		a.metrics.online.Inc()
	case *closeSession:
		conns := a.sessions[msg.player]
		if _, ok := conns[msg.conn]; !ok {
			return
		}
		delete(conns, msg.conn)
		if len(conns) == 0 {
			delete(a.sessions, msg.player)
		}
		a.metrics.online.Dec()
	case *publishMsg:
		for _, ev := range msg.events {
			a.fanOut(ev)
		}
	case *countSessions:
		ctx.Respond(len(a.sessions[msg.player]))
	}
}

// fanOut 推给每个接收者的所有连接，不在线直接忽略。
func (a *hubActor) fanOut(ev domain.Event) {
	name := PushPrefix + string(ev.Kind)
	for _, p := range ev.Recipients {
		for conn := range a.sessions[p] {
			if conn.Push(name, ev) {
				a.metrics.pushed.WithLabelValues(string(ev.Kind)).Inc()
				continue
			}
			a.metrics.dropped.WithLabelValues(string(ev.Kind)).Inc()
			a.log.Debug("notify push dropped",
				zap.String("kind", string(ev.Kind)),
				zap.Int64("player_id", int64(p)),
				zap.String("addr", conn.Addr()))
		}
	}
}
