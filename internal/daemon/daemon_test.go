package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/momentum-app/momentum/internal/domain"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Store.Seed = false
	cfg.Logging.Level = "error"
	cfg.Notifications.Permission = string(domain.PermissionGranted)
	cfg.Notifications.Log = false
	cfg.Reminders.Interval = "10ms"
	cfg.AI.APIKey = ""
	return cfg
}

var fixedNow = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func newTestDaemon(t *testing.T, cfg Config) *Daemon {
	t.Helper()
	d, err := newDaemon(cfg, domain.ClockFunc(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("newDaemon() error: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func pendingOfType(t *testing.T, d *Daemon, typ domain.NotificationType) []domain.Notification {
	t.Helper()
	pending, err := d.Inbox.Pending(100)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	var out []domain.Notification
	for _, n := range pending {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func completeTasks(t *testing.T, d *Daemon, n, priority int) {
	t.Helper()
	for i := 0; i < n; i++ {
		task := d.Store.AddTask(domain.NewTask{
			Title:    "Task",
			Priority: priority,
			Category: domain.CategoryWork,
			Duration: 15,
		})
		if err := d.Store.ToggleTask(task.ID); err != nil {
			t.Fatalf("ToggleTask() error: %v", err)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Wiring
// ═══════════════════════════════════════════════════════════════════════════

func TestNewDaemon_WiresServices(t *testing.T) {
	d := newTestDaemon(t, testConfig())

	if d.Store == nil || d.Planner == nil || d.DB == nil || d.Gate == nil {
		t.Fatal("expected core services to be wired")
	}
	if d.AI != nil {
		t.Error("expected no AI client without an API key")
	}
	if len(d.Store.Tasks()) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(d.Store.Tasks()))
	}
	if d.Gate.Permission() != domain.PermissionGranted {
		t.Errorf("expected granted, got %s", d.Gate.Permission())
	}
}

func TestNewDaemon_SeededStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Seed = true
	d := newTestDaemon(t, cfg)

	if len(d.Store.Tasks()) == 0 {
		t.Error("expected seeded tasks")
	}
	if d.Store.XP() != 1250 {
		t.Errorf("expected seeded xp 1250, got %d", d.Store.XP())
	}
}

func TestNewDaemon_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Store.LevelPolicy = "sideways"
	if _, err := newDaemon(cfg, domain.SystemClock); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDaemon_HealthEndpoint(t *testing.T) {
	d := newTestDaemon(t, testConfig())
	d.Health.RunAll(context.Background())

	rec := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Observers
// ═══════════════════════════════════════════════════════════════════════════

func TestDaemon_RecordsXPLedger(t *testing.T) {
	d := newTestDaemon(t, testConfig())
	completeTasks(t, d, 2, 3)

	events, err := d.DB.ListXPEvents(10)
	if err != nil {
		t.Fatalf("ListXPEvents() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(events))
	}
	if events[0].Total != 60 || events[0].Amount != 30 {
		t.Errorf("expected newest entry 30 -> 60, got %d -> %d", events[0].Amount, events[0].Total)
	}
}

func TestDaemon_LevelUpNotification(t *testing.T) {
	cfg := testConfig()
	cfg.Store.LevelPolicy = string(domain.LevelDerived)
	d := newTestDaemon(t, cfg)

	completeTasks(t, d, 20, 5) // 1000 xp

	if d.Store.Level() != 2 {
		t.Fatalf("expected level 2, got %d", d.Store.Level())
	}
	levelUps := pendingOfType(t, d, domain.NotifyLevelUp)
	if len(levelUps) != 1 {
		t.Fatalf("expected 1 level-up notification, got %d", len(levelUps))
	}
	if levelUps[0].Title != "Level 2 reached" {
		t.Errorf("unexpected title %q", levelUps[0].Title)
	}
}

func TestDaemon_ManualLevelSendsNothing(t *testing.T) {
	d := newTestDaemon(t, testConfig())
	completeTasks(t, d, 20, 5)

	if d.Store.Level() != 1 {
		t.Errorf("expected manual level to stay 1, got %d", d.Store.Level())
	}
	if n := len(pendingOfType(t, d, domain.NotifyLevelUp)); n != 0 {
		t.Errorf("expected no level-up notifications, got %d", n)
	}
}

func TestDaemon_AchievementUnlockNotifies(t *testing.T) {
	d := newTestDaemon(t, testConfig())
	completeTasks(t, d, 1, 2)

	achievements := pendingOfType(t, d, domain.NotifyAchievement)
	if len(achievements) != 1 {
		t.Fatalf("expected 1 achievement notification, got %d", len(achievements))
	}
	if achievements[0].Body != "Complete your first task" {
		t.Errorf("unexpected body %q", achievements[0].Body)
	}

	// The same state does not unlock twice.
	d.Store.SetEnergyLevel(domain.EnergyLow)
	if n := len(pendingOfType(t, d, domain.NotifyAchievement)); n != 1 {
		t.Errorf("expected still 1 achievement notification, got %d", n)
	}
}

func TestDaemon_SeedAchievementsAreSilent(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Seed = true
	d := newTestDaemon(t, cfg)

	count, err := d.Achievements.UnlockedCount()
	if err != nil {
		t.Fatalf("UnlockedCount() error: %v", err)
	}
	if count == 0 {
		t.Error("expected the seeded state to unlock level_5 and xp_1000")
	}
	if n := len(pendingOfType(t, d, domain.NotifyAchievement)); n != 0 {
		t.Errorf("expected no notifications for the starting state, got %d", n)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Lifecycle
// ═══════════════════════════════════════════════════════════════════════════

func TestDaemon_StartDeliversReminders(t *testing.T) {
	d := newTestDaemon(t, testConfig())
	d.Store.AddTask(domain.NewTask{
		Title:    "Call the bank",
		Priority: 2,
		Category: domain.CategoryPersonal,
		Duration: 10,
		Reminder: domain.Some(fixedNow.Add(-time.Minute)),
	})

	d.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reminders := pendingOfType(t, d, domain.NotifyReminder); len(reminders) == 1 {
			if reminders[0].TaskID == "" {
				t.Error("expected reminder to reference its task")
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("reminder was not delivered")
}

func TestDaemon_CloseIsIdempotent(t *testing.T) {
	d := newTestDaemon(t, testConfig())
	d.Start(context.Background())
	d.Close()
	d.Close()
}
