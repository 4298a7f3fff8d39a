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

	MatchingSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_selections_total",
			Help: "Archetype selections by resulting strategy",
		},
		[]string{"strategy"},
	)

	MappingFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gender_mapping_fallbacks_total",
			Help: "Gender mapping resolutions that used the hardcoded fallback",
		},
		[]string{"sex_code"},
	)

	EnvelopeCorrections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "envelope_integrity_corrections_total",
			Help: "Envelopes repaired by the integrity validator",
		},
	)
)
