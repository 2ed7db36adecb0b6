// Package metrics exposes Prometheus instrumentation for the translation
// engine. All collectors are registered with the default registry and
// served from the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksSubmitted tracks translation tasks accepted for execution
	TasksSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosetta_tasks_submitted_total",
			Help: "Total number of translation tasks submitted",
		},
	)

	// TasksFinished tracks finished tasks by outcome
	TasksFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosetta_tasks_finished_total",
			Help: "Total number of translation tasks finished",
		},
		[]string{"outcome"},
	)

	// AttemptsTotal tracks translation attempts by result
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosetta_attempts_total",
			Help: "Total number of translation attempts",
		},
		[]string{"result"},
	)

	// RetriesTotal tracks retries by error kind
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosetta_retries_total",
			Help: "Total number of retried attempts",
		},
		[]string{"kind"},
	)

	// ErrorsTotal tracks terminal failures by error kind
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosetta_errors_total",
			Help: "Total number of failed tasks",
		},
		[]string{"kind"},
	)

	// TaskDuration tracks end-to-end task latency by outcome
	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosetta_task_duration_seconds",
			Help:    "End-to-end task duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// ActiveTasks tracks the number of tasks currently in flight
	ActiveTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rosetta_active_tasks",
			Help: "Number of translation tasks currently in flight",
		},
	)

	// TasksCoalesced tracks submissions replaced inside the debounce window
	TasksCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosetta_tasks_coalesced_total",
			Help: "Total number of submissions replaced by a newer one before dispatch",
		},
	)

	// CacheRequests tracks cache lookups by result
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosetta_cache_requests_total",
			Help: "Total number of translation cache lookups",
		},
		[]string{"result"},
	)
)
