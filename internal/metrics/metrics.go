package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todowidget"

// Result labels for Operations.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Operations   *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	DBConnected  prometheus.Gauge
	Reconnects   *prometheus.CounterVec
	SSEClients   prometheus.Gauge
	TelegramCmds *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with a fresh registry that
// also carries the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors with reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Todo operations by entity, operation and result.",
		}, []string{"entity", "op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent in todo operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "op"}),
		DBConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connected",
			Help:      "1 while a database pool is live.",
		}),
		Reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_reconnects_total",
			Help:      "Reconnect attempts by result.",
		}, []string{"result"}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_subscribers",
			Help:      "Open /api/events streams.",
		}),
		TelegramCmds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_commands_total",
			Help:      "Telegram commands handled.",
		}, []string{"command"}),
		gatherer: g,
	}

	reg.MustRegister(m.Operations, m.Duration, m.DBConnected, m.Reconnects, m.SSEClients, m.TelegramCmds)
	return m
}

// Observe records one operation. It is safe to call on a nil *Metrics.
func (m *Metrics) Observe(entity, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(entity, op, result).Inc()
	m.Duration.WithLabelValues(entity, op).Observe(time.Since(started).Seconds())
}

// SetConnected updates the db_connected gauge.
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.DBConnected.Set(1)
	} else {
		m.DBConnected.Set(0)
	}
}

// Reconnected counts a reconnect attempt.
func (m *Metrics) Reconnected(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Reconnects.WithLabelValues(ResultOK).Inc()
	} else {
		m.Reconnects.WithLabelValues(ResultError).Inc()
	}
}

// Command counts a handled telegram command.
func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.TelegramCmds.WithLabelValues(name).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// StreamOpened counts an /api/events subscriber in.
func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.SSEClients.Inc()
}

// StreamClosed counts an /api/events subscriber out.
func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.SSEClients.Dec()
}
