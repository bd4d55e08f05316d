// Package metrics exposes prometheus instrumentation for the ingestion
// pipeline and the query surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_pipeline_steps_total",
		Help: "Pipeline step executions by step name and result.",
	}, []string{"step", "result"})

	stepSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_pipeline_step_seconds",
		Help:    "Pipeline step duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})

	pipelineSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quill_pipeline_seconds",
		Help:    "End-to-end pipeline duration in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_search_requests_total",
		Help: "Search requests by result.",
	}, []string{"result"})

	askTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_ask_requests_total",
		Help: "Ask requests by result.",
	}, []string{"result"})
)

// StepCompleted records a successful step execution.
func StepCompleted(step string, d time.Duration) {
	stepsTotal.WithLabelValues(step, "success").Inc()
	stepSeconds.WithLabelValues(step).Observe(d.Seconds())
}

// StepRetried records a retried step attempt.
func StepRetried(step string) {
	stepsTotal.WithLabelValues(step, "retry").Inc()
}

// StepFailed records a failed step.
func StepFailed(step string) {
	stepsTotal.WithLabelValues(step, "failure").Inc()
}

// PipelineCompleted records one finished pipeline run.
func PipelineCompleted(d time.Duration) {
	pipelineSeconds.Observe(d.Seconds())
}

// SearchCompleted records a search request outcome ("ok", "empty", "error").
func SearchCompleted(result string) {
	searchTotal.WithLabelValues(result).Inc()
}

// AskCompleted records an ask request outcome ("ok", "empty", "error").
func AskCompleted(result string) {
	askTotal.WithLabelValues(result).Inc()
}
