package notify

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	online  prometheus.Gauge
	pushed  *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hegemony",
			Subsystem: "notify",
			Name:      "sessions_online",
			Help:      "在线的 ws 会话数",
		}),
		pushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hegemony",
			Subsystem: "notify",
			Name:      "pushed_total",
			Help:      "成功入队的推送数",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hegemony",
			Subsystem: "notify",
			Name:      "dropped_total",
			Help:      "缓冲满或连接关闭而丢弃的推送数",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.online, m.pushed, m.dropped)
	}
	return m
}
