package instrumentation

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

// Metric definitions for the screening workflow

var (
	verdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsb",
			Subsystem: "workflow",
			Name:      "verdicts_total",
			Help:      "Total screening runs by terminal status",
		},
		[]string{"status"},
	)

	stageExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsb",
			Subsystem: "workflow",
			Name:      "stage_executions_total",
			Help:      "Total stage executions by outcome",
		},
		[]string{"stage", "result"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fsb",
			Subsystem: "workflow",
			Name:      "stage_duration_seconds",
			Help:      "Scoring stage duration including retries",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
		},
		[]string{"stage"},
	)
)

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// WorkflowMetrics implements the workflow metrics collector on Prometheus.
type WorkflowMetrics struct{}

// NewWorkflowMetrics creates the Prometheus-backed collector.
func NewWorkflowMetrics() *WorkflowMetrics {
	return &WorkflowMetrics{}
}

// RecordStage records one stage execution.
func (*WorkflowMetrics) RecordStage(stage screening.Stage, duration time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	stageExecutionsTotal.WithLabelValues(string(stage), result).Inc()
	stageDuration.WithLabelValues(string(stage)).Observe(duration.Seconds())
}

// RecordVerdict records a terminal run status.
func (*WorkflowMetrics) RecordVerdict(status screening.Status) {
	verdictsTotal.WithLabelValues(string(status)).Inc()
}
