package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	pushes   *prometheus.CounterVec
	clicks   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkup",
			Subsystem: "push",
			Name:      "events_total",
			Help:      "Push events handled, by payload kind.",
		}, []string{"kind"}),
		clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkup",
			Subsystem: "push",
			Name:      "clicks_total",
			Help:      "Notification clicks handled, by resulting action.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkup",
			Subsystem: "push",
			Name:      "event_failures_total",
			Help:      "Events whose host operation failed, by event type.",
		}, []string{"event"}),
	}
	if reg != nil {
		reg.MustRegister(m.pushes, m.clicks, m.failures)
	}
	return m
}
