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

	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formation_validations_total",
			Help: "Validator runs by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	StepTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formation_step_transitions_total",
			Help: "Workflow step transitions by step type and resulting status",
		},
		[]string{"step_type", "status"},
	)

	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formation_quotes_total",
			Help: "Quotes computed per freezone",
		},
		[]string{"freezone"},
	)

	WaivedLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formation_waived_lines_total",
			Help: "Quote line items zeroed by a promotion",
		},
		[]string{"promotion_key"},
	)

	ConfigurationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formation_configuration_errors_total",
			Help: "Catalog or validator configuration errors surfaced to operators",
		},
		[]string{"error_code"},
	)
)

// Validation result labels.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
)
