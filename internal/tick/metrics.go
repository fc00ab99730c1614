package tick

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	claimed   *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	integrity prometheus.Counter
	deferred  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		claimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hegemony",
			Subsystem: "tick",
			Name:      "claimed_total",
			Help:      "每个循环认领/处理的条目数",
		}, []string{"loop"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hegemony",
			Subsystem: "tick",
			Name:      "failed_total",
			Help:      "每个循环处理失败的条目数",
		}, []string{"loop"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hegemony",
			Subsystem: "tick",
			Name:      "pass_seconds",
			Help:      "单轮耗时",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"loop"}),
		integrity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hegemony",
			Subsystem: "tick",
			Name:      "integrity_violations_total",
			Help:      "军队到达处理失败、需要人工介入的次数",
		}),
		deferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hegemony",
			Subsystem: "tick",
			Name:      "arrivals_deferred_total",
			Help:      "同一落点有更早到达未结算而让出认领的次数",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.claimed, m.failed, m.duration, m.integrity, m.deferred)
	}
	return m
}
