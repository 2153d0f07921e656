// Package metrics provides Prometheus metrics for reviewforge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Play engine ────────────────────────────────────────────────────────────

// TasksPlayed tracks completed review task plays by outcome.
var TasksPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "reviewforge",
	Name:      "tasks_played_total",
	Help:      "Total review tasks played, by outcome.",
}, []string{"outcome"})

// PlayLatency tracks how long a play request takes to settle.
var PlayLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "reviewforge",
	Name:      "play_latency_seconds",
	Help:      "Time to settle a play request end to end.",
	Buckets:   prometheus.DefBuckets,
})

// ActiveTaskLookups tracks active-task selection calls.
var ActiveTaskLookups = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "reviewforge",
	Name:      "active_task_lookups_total",
	Help:      "Total active task lookups.",
})

// ─── Wallet ─────────────────────────────────────────────────────────────────

// SalaryPaidTotal tracks cumulative salary paid out, in the smallest currency unit.
var SalaryPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "reviewforge",
	Name:      "salary_paid_total",
	Help:      "Cumulative salary paid out across all users.",
})

// WalletBalance tracks the aggregate wallet balance last observed.
var WalletBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "reviewforge",
	Name:      "wallet_balance_current",
	Help:      "Aggregate wallet balance across all users, last observed.",
})

// ─── Special tasks ──────────────────────────────────────────────────────────

// SpecialTasksCreated tracks admin-injected special tasks.
var SpecialTasksCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "reviewforge",
	Name:      "special_tasks_created_total",
	Help:      "Total special tasks created by admins.",
})

// ─── Daily reset ────────────────────────────────────────────────────────────

// ResetDuration tracks how long the daily reset pass took.
var ResetDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "reviewforge",
	Name:      "daily_reset_duration_seconds",
	Help:      "Time taken by the daily reset pass.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
})

// ResetRuns tracks completed daily reset passes.
var ResetRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "reviewforge",
	Name:      "daily_reset_runs_total",
	Help:      "Total completed daily reset passes.",
})

// ─── Auth ───────────────────────────────────────────────────────────────────

// LoginAttempts tracks login attempts by surface and result.
var LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "reviewforge",
	Name:      "login_attempts_total",
	Help:      "Total login attempts, by surface and result.",
}, []string{"surface", "result"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "reviewforge",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
