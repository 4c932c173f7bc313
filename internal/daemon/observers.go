package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momentum-app/momentum/internal/app/engagement"
	"github.com/momentum-app/momentum/internal/app/momentum"
	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/metrics"
	"github.com/momentum-app/momentum/internal/infra/sqlite"
)

// ─── Store Observers ────────────────────────────────────────────────────────
// Subscribers run synchronously after each store mutation.

// recordXP appends every award to the ledger.
func recordXP(db *sqlite.DB, log *slog.Logger) momentum.Handler {
	return func(ev momentum.Event) {
		if ev.Type != momentum.EventXPAwarded {
			return
		}
		if _, err := db.InsertXPEvent(ev.XP); err != nil {
			log.Warn("xp ledger insert failed", "ref_id", ev.XP.RefID, "error", err)
		}
	}
}

// observeMetrics keeps the store gauges and event counters current.
func observeMetrics(store *momentum.Store) momentum.Handler {
	refresh := func() {
		st := store.Stats()
		metrics.TasksTotal.Set(float64(st.TotalTasks))
		metrics.TasksCompleted.Set(float64(st.CompletedTasks))
		metrics.ExecutionScore.Set(float64(st.ExecutionScore))
		metrics.XP.Set(float64(st.XP))
		metrics.Level.Set(float64(st.Level))
	}
	refresh()

	return func(ev momentum.Event) {
		metrics.StoreEvents.WithLabelValues(string(ev.Type)).Inc()
		switch ev.Type {
		case momentum.EventTaskToggled:
			if ev.Task.Completed {
				metrics.TaskCompletions.WithLabelValues(string(ev.Task.Category)).Inc()
			}
		case momentum.EventHabitCompleted:
			metrics.HabitCompletions.Inc()
		case momentum.EventXPAwarded:
			metrics.XPAwarded.WithLabelValues(string(ev.XP.Source)).Add(float64(ev.XP.Amount))
		}
		refresh()
	}
}

// notifyLevelUp sends a notification when the derived level rises.
func notifyLevelUp(sink domain.NotificationSink, clock domain.Clock, log *slog.Logger) momentum.Handler {
	return func(ev momentum.Event) {
		if ev.Type != momentum.EventLevelUp || sink.Permission() != domain.PermissionGranted {
			return
		}
		n := domain.Notification{
			Type:      domain.NotifyLevelUp,
			Title:     fmt.Sprintf("Level %d reached", ev.Level),
			Body:      fmt.Sprintf("You reached level %d. Keep the momentum going!", ev.Level),
			CreatedAt: clock.Now(),
		}
		if err := sink.Notify(context.Background(), n); err != nil {
			log.Warn("level-up notification failed", "level", ev.Level, "error", err)
		}
	}
}

// unlockAchievements re-evaluates the catalog after every mutation, of any
// type, and announces new unlocks.
func unlockAchievements(svc *engagement.AchievementService, store *momentum.Store, sink domain.NotificationSink, clock domain.Clock, log *slog.Logger) momentum.Handler {
	return func(momentum.Event) {
		unlocked, err := checkAchievements(svc, store, clock)
		if err != nil {
			log.Warn("achievement check failed", "error", err)
			return
		}
		for _, def := range unlocked {
			log.Info("achievement unlocked", "id", def.ID)
			if sink.Permission() != domain.PermissionGranted {
				continue
			}
			n := domain.Notification{
				Type:      domain.NotifyAchievement,
				Title:     fmt.Sprintf("%s Achievement unlocked: %s", def.Icon, def.Title),
				Body:      def.Description,
				CreatedAt: clock.Now(),
			}
			if err := sink.Notify(context.Background(), n); err != nil {
				log.Warn("achievement notification failed", "id", def.ID, "error", err)
			}
		}
	}
}

func checkAchievements(svc *engagement.AchievementService, store *momentum.Store, clock domain.Clock) ([]domain.AchievementDef, error) {
	snap := engagement.Snapshot(store.Stats(), store.Tasks(), store.Habits())
	unlocked, err := svc.CheckAndUnlock(snap, clock.Now())
	if err != nil {
		return nil, err
	}
	metrics.AchievementsUnlocked.Add(float64(len(unlocked)))
	return unlocked, nil
}
