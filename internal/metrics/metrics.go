// Package metrics exposes Prometheus instrumentation for the audit service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carbontrace/carbontrace/internal/audit"
)

// Metrics holds the service's Prometheus collectors. All collectors are
// registered against the registry passed to New, so tests can use a private
// registry instead of the global one.
type Metrics struct {
	RunsTotal    *prometheus.CounterVec
	RowsIn       prometheus.Counter
	RowsRepaired prometheus.Counter
	RowsDropped  prometheus.Counter
	Breaches     prometheus.Counter
	RunDuration  prometheus.Histogram
}

// New registers the audit collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbontrace",
			Name:      "audit_runs_total",
			Help:      "Completed audit runs by outcome.",
		}, []string{"outcome"}),
		RowsIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "carbontrace",
			Name:      "rows_ingested_total",
			Help:      "Raw rows received across all runs.",
		}),
		RowsRepaired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "carbontrace",
			Name:      "rows_repaired_total",
			Help:      "Rows repaired by the cleaning pipeline.",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "carbontrace",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped by the cleaning pipeline.",
		}),
		Breaches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "carbontrace",
			Name:      "cap_breaches_total",
			Help:      "Factories whose total exceeded their sector cap.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carbontrace",
			Name:      "audit_run_duration_seconds",
			Help:      "Wall time of a complete audit run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records the counters for one successful run.
func (m *Metrics) ObserveRun(report *audit.AuditReport, seconds float64) {
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.RowsIn.Add(float64(report.Cleaning.RowsIn))
	m.RowsRepaired.Add(float64(report.Cleaning.RowsRepaired))
	m.RowsDropped.Add(float64(report.Cleaning.RowsDropped))
	m.RunDuration.Observe(seconds)

	for _, alert := range report.Alerts {
		if alert.Severity == audit.SeverityBreach {
			m.Breaches.Inc()
		}
	}
}

// ObserveFailure records a run that aborted before producing a report.
func (m *Metrics) ObserveFailure() {
	m.RunsTotal.WithLabelValues("error").Inc()
}
