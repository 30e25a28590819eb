package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for pipeline runs and the read API, registered
// on a private registry so several instances can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	rowsGenerated *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	eventsSent    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		rowsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditsim",
			Name:      "rows_generated_total",
			Help:      "Rows produced per table.",
		}, []string{"table"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "creditsim",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditsim",
			Name:      "stage_failures_total",
			Help:      "Failed pipeline stages.",
		}, []string{"stage"}),
		eventsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditsim",
			Name:      "table_events_total",
			Help:      "Table-ready events published, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditsim",
			Name:      "http_requests_total",
			Help:      "Read API requests by route and status.",
		}, []string{"route", "status"}),
	}
	m.Registry.MustRegister(m.rowsGenerated, m.stageDuration, m.stageFailures, m.eventsSent, m.httpRequests)
	return m
}

func (m *Metrics) ObserveStage(stage, table string, rows int, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	m.rowsGenerated.WithLabelValues(table).Add(float64(rows))
}

func (m *Metrics) StageFailed(stage string) {
	m.stageFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) EventPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.eventsSent.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(route, status string) {
	m.httpRequests.WithLabelValues(route, status).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
