package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exported by the job server.
type Metrics struct {
	// JobsTotal counts finished jobs by terminal status.
	JobsTotal *prometheus.CounterVec

	// JobsRunning tracks the number of currently running jobs.
	JobsRunning prometheus.Gauge

	// Evaluations counts objective-function evaluations across all jobs.
	Evaluations prometheus.Counter

	// Iterations observes outer iterations per completed job.
	Iterations prometheus.Histogram

	// Duration observes wall-clock seconds per completed job.
	Duration prometheus.Histogram
}

// NewMetrics registers the server's collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ravine",
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Finished minimization jobs by terminal status.",
		}, []string{"status"}),
		JobsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ravine",
			Subsystem: "jobs",
			Name:      "running",
			Help:      "Currently running minimization jobs.",
		}),
		Evaluations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ravine",
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Objective function evaluations across all jobs.",
		}),
		Iterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ravine",
			Subsystem: "engine",
			Name:      "iterations",
			Help:      "Outer iterations per completed job.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ravine",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration per completed job.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}
