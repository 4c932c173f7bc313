package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	switch {
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	case out.Counter != nil:
		return out.Counter.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestStoreGauges(t *testing.T) {
	TasksTotal.Set(3)
	TasksCompleted.Set(1)
	ExecutionScore.Set(33)
	XP.Set(1250)
	Level.Set(5)

	names := gatheredNames(t)
	expected := []string{
		"momentum_tasks",
		"momentum_tasks_completed",
		"momentum_execution_score_percent",
		"momentum_xp",
		"momentum_level",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
	if v := value(t, ExecutionScore); v != 33 {
		t.Errorf("expected 33, got %v", v)
	}
}

func TestEventCounters(t *testing.T) {
	before := value(t, XPAwarded.WithLabelValues("HABIT_COMPLETED"))
	XPAwarded.WithLabelValues("HABIT_COMPLETED").Add(25)
	StoreEvents.WithLabelValues("task.added").Inc()
	unlocks := value(t, AchievementsUnlocked)
	AchievementsUnlocked.Inc()

	if got := value(t, AchievementsUnlocked); got != unlocks+1 {
		t.Errorf("expected %v unlocks, got %v", unlocks+1, got)
	}
	if got := value(t, XPAwarded.WithLabelValues("HABIT_COMPLETED")); got != before+25 {
		t.Errorf("expected %v, got %v", before+25, got)
	}
	if !gatheredNames(t)["momentum_store_events_total"] {
		t.Error("momentum_store_events_total not found")
	}
}

func TestReminderAndAIMetrics(t *testing.T) {
	RemindersProcessed.WithLabelValues("true").Inc()
	NotificationsPending.Set(2)
	AIRequests.WithLabelValues("breakdown", "ok").Inc()
	AILatency.WithLabelValues("breakdown").Observe(0.8)

	names := gatheredNames(t)
	for _, name := range []string{
		"momentum_reminders_processed_total",
		"momentum_notifications_pending",
		"momentum_ai_requests_total",
		"momentum_ai_latency_seconds",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestHTTPAndHealthMetrics(t *testing.T) {
	HTTPRequests.WithLabelValues("GET", "/api/tasks", "200").Inc()
	HTTPLatency.WithLabelValues("GET", "/api/tasks").Observe(0.002)
	HealthCheckStatus.WithLabelValues("inbox").Set(1)

	if v := value(t, HealthCheckStatus.WithLabelValues("inbox")); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	names := gatheredNames(t)
	if !names["momentum_http_requests_total"] || !names["momentum_http_request_duration_seconds"] {
		t.Error("http metrics not registered")
	}
}
