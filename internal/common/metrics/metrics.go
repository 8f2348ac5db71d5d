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
)

var (
	// Submissions by outcome: confirmed, pending, duplicate, mismatch, rejected, failed.
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_submissions_total",
			Help: "Submission attempts by outcome",
		},
		[]string{"outcome"},
	)

	Reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_reconciliations_total",
			Help: "Network reconciliation attempts by result",
		},
		[]string{"result"},
	)

	VerdictChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_verdict_checks_total",
			Help: "Verdict checks by resulting status",
		},
		[]string{"status"},
	)

	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_gateway_requests_total",
			Help: "Decryption gateway requests by outcome",
		},
		[]string{"outcome"},
	)

	LedgerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eligibility_ledger_call_duration_seconds",
			Help:    "Ledger authority call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
