package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_pipeline_runs_total",
			Help: "Total correlation pipeline runs",
		},
		[]string{"status"}, // status: success|insufficient_data|error
	)

	PipelineRowsExcluded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_pipeline_rows_excluded_total",
			Help: "Rows excluded from model fitting, by reason",
		},
		[]string{"reason"}, // missing_next_close|zero_close|missing_sentiment|invalid_recommendation
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hermes_pipeline_duration_seconds",
			Help:    "Correlation pipeline duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	// Ingestion metrics
	ArticlesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_articles_ingested_total",
			Help: "Articles processed by the ingest pipeline",
		},
		[]string{"outcome"}, // outcome: analyzed|skipped|error
	)

	RecommendationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hermes_recommendation_fallbacks_total",
			Help: "Analyses stored with the hold fallback after a recommender failure",
		},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error|panic
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)
)

// Register registers all collectors with the default registry.
// Safe to call once at startup.
func Register() {
	prometheus.MustRegister(
		PipelineRuns,
		PipelineRowsExcluded,
		PipelineDuration,
		ArticlesIngested,
		RecommendationFallbacks,
		WorkerExecutions,
		WorkerDuration,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
