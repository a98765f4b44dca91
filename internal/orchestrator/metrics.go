// internal/orchestrator/metrics.go
package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the orchestrator's Prometheus metrics on a private
// registry, so tests can build as many instances as they like.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	UsersProcessed prometheus.Counter
	Anomalies      prometheus.Counter
	Findings       prometheus.Counter
	UserErrors     prometheus.Counter
	RunDuration    prometheus.Histogram
	registry       *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vitalgraph_runs_total",
				Help: "Completed processing-window runs",
			},
			[]string{"window"},
		),
		UsersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalgraph_users_processed_total",
			Help: "Users successfully analyzed",
		}),
		Anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalgraph_anomalies_detected_total",
			Help: "Baseline deviations flagged",
		}),
		Findings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalgraph_findings_generated_total",
			Help: "Significant correlation findings produced",
		}),
		UserErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalgraph_user_errors_total",
			Help: "Per-user failures isolated during runs",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitalgraph_run_duration_seconds",
			Help:    "Processing-window run duration",
			Buckets: prometheus.DefBuckets,
		}),
		registry: registry,
	}

	registry.MustRegister(m.RunsTotal, m.UsersProcessed, m.Anomalies, m.Findings, m.UserErrors, m.RunDuration)
	return m
}

// Registry exposes the private registry for the metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
