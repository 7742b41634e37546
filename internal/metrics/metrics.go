package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	PersistWrites        *prometheus.CounterVec
	BufferedWrites       *prometheus.CounterVec
	LastWriteFailed      prometheus.Gauge
	NotificationsFired   prometheus.Counter
	NotificationsPending prometheus.GaugeFunc
}

// New registers the collectors on a private registry. pending may be nil.
func New(pending func() float64) *Metrics {
	if pending == nil {
		pending = func() float64 { return 0 }
	}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PersistWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_persist_writes_total",
				Help: "Preference store writes by entity and result",
			},
			[]string{"entity", "result"},
		),
		BufferedWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_buffered_writes_total",
				Help: "Snapshots moved to the retry buffer after a failed write",
			},
			[]string{"entity"},
		),
		LastWriteFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todo_last_write_failed",
			Help: "1 when the most recent preference store write failed",
		}),
		NotificationsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todo_notifications_fired_total",
			Help: "Due-date notifications delivered",
		}),
		NotificationsPending: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "todo_notifications_pending",
			Help: "Due-date notifications waiting to fire",
		}, pending),
	}
	m.Registry.MustRegister(
		m.PersistWrites,
		m.BufferedWrites,
		m.LastWriteFailed,
		m.NotificationsFired,
		m.NotificationsPending,
	)
	return m
}

// ObserveWrite records the outcome of a preference store write.
func (m *Metrics) ObserveWrite(entity string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.PersistWrites.WithLabelValues(entity, "error").Inc()
		m.LastWriteFailed.Set(1)
		return
	}
	m.PersistWrites.WithLabelValues(entity, "ok").Inc()
	m.LastWriteFailed.Set(0)
}

func (m *Metrics) ObserveBuffered(entity string) {
	if m == nil {
		return
	}
	m.BufferedWrites.WithLabelValues(entity).Inc()
}

// Handler exposes the registry to fasthttp.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
