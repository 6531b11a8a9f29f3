// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_messages_processed_total",
			Help: "Total number of user messages handled",
		},
	)

	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_model_requests_total",
			Help: "Completion requests sent per model backend",
		},
		[]string{"model"},
	)

	Errors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_errors_total",
			Help: "Model call failures surfaced to the user",
		},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_provider_calls_total",
			Help: "Outbound enrichment provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	EnrichmentCategory = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_enrichment_category_total",
			Help: "Which enrichment category supplied context",
		},
		[]string{"category"},
	)
)
