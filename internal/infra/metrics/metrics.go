// Package metrics provides Prometheus metrics for Momentum.
// Store gauges mirror the dashboard; counters track events, reminders,
// AI calls and HTTP traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "momentum"

// ─── Store ──────────────────────────────────────────────────────────────────

// TasksTotal tracks the number of tasks in the list.
var TasksTotal = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks",
	Help:      "Number of tasks in the list.",
})

// TasksCompleted tracks the number of completed tasks in the list.
var TasksCompleted = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_completed",
	Help:      "Number of completed tasks in the list.",
})

// ExecutionScore tracks the completed/total percentage.
var ExecutionScore = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "execution_score_percent",
	Help:      "Completed tasks as a rounded percentage of all tasks.",
})

// XP tracks the accumulated experience points.
var XP = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "xp",
	Help:      "Accumulated experience points.",
})

// Level tracks the current level.
var Level = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "level",
	Help:      "Current level.",
})

// ─── Events ─────────────────────────────────────────────────────────────────

// StoreEvents counts store change events by type.
var StoreEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "store_events_total",
	Help:      "Store change events by type.",
}, []string{"type"})

// TaskCompletions counts tasks toggled to completed, by category.
var TaskCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "task_completions_total",
	Help:      "Tasks toggled to completed, by category.",
}, []string{"category"})

// HabitCompletions counts daily habit completions.
var HabitCompletions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "habit_completions_total",
	Help:      "Total daily habit completions.",
})

// XPAwarded counts awarded XP by source.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded by source.",
}, []string{"source"})

// AchievementsUnlocked counts achievement unlocks.
var AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
})

// ─── Reminders ──────────────────────────────────────────────────────────────

// RemindersProcessed counts reminders marked sent, by whether a
// notification was delivered.
var RemindersProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "reminders_processed_total",
	Help:      "Reminders marked sent, by delivery outcome.",
}, []string{"delivered"})

// NotificationsPending tracks undisplayed notifications in the inbox.
var NotificationsPending = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "notifications_pending",
	Help:      "Notifications waiting to be shown.",
})

// ─── AI ─────────────────────────────────────────────────────────────────────

// AIRequests counts AI collaborator calls by operation and outcome.
var AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "ai_requests_total",
	Help:      "AI collaborator calls by operation and outcome.",
}, []string{"op", "outcome"})

// AILatency tracks AI call duration in seconds.
var AILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "ai_latency_seconds",
	Help:      "AI collaborator call duration in seconds.",
	Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}, []string{"op"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by method, route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "API requests by method, route and status code.",
}, []string{"method", "route", "status"})

// HTTPLatency tracks API request duration in seconds.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "API request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
