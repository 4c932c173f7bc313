// Package engagement awards achievements for sustained momentum: finished
// tasks, habit streaks, levels and XP milestones.
package engagement

import (
	"time"

	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/sqlite"
)

// AchievementService evaluates the achievement catalog against stats
// snapshots and records unlocks in the database.
type AchievementService struct {
	db          *sqlite.DB
	definitions []domain.AchievementDef
}

// NewAchievementService creates an achievement service with all definitions.
func NewAchievementService(db *sqlite.DB) *AchievementService {
	return &AchievementService{
		db:          db,
		definitions: AllAchievements(),
	}
}

// CheckAndUnlock evaluates all achievements against current stats.
// Returns newly unlocked achievements; already-unlocked ones are skipped.
// Unlocks are permanent even when the stats later fall back.
func (a *AchievementService) CheckAndUnlock(stats domain.AchievementStats, at time.Time) ([]domain.AchievementDef, error) {
	var newlyUnlocked []domain.AchievementDef

	for _, def := range a.definitions {
		if def.Predicate == nil || !def.Predicate(stats) {
			continue
		}
		unlocked, err := a.db.IsAchievementUnlocked(def.ID)
		if err != nil {
			return nil, err
		}
		if unlocked {
			continue
		}

		isNew, err := a.db.UnlockAchievement(def.ID, at)
		if err != nil {
			return nil, err
		}
		if isNew {
			newlyUnlocked = append(newlyUnlocked, def)
		}
	}

	return newlyUnlocked, nil
}

// List returns the whole catalog in definition order, each entry marked
// with its unlock state.
func (a *AchievementService) List() ([]domain.Achievement, error) {
	unlocked, err := a.db.ListUnlockedAchievements()
	if err != nil {
		return nil, err
	}
	at := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.ID] = u.UnlockedAt
	}

	list := make([]domain.Achievement, 0, len(a.definitions))
	for _, def := range a.definitions {
		ach := domain.Achievement{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
		}
		if t, ok := at[def.ID]; ok {
			ach.Unlocked = true
			ach.UnlockedAt = domain.Some(t)
		}
		list = append(list, ach)
	}
	return list, nil
}

// UnlockedCount returns how many achievements are unlocked.
func (a *AchievementService) UnlockedCount() (int, error) {
	return a.db.UnlockedAchievementCount()
}

// TotalCount returns the total number of defined achievements.
func (a *AchievementService) TotalCount() int {
	return len(a.definitions)
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// Snapshot builds the predicate input from store reads.
func Snapshot(stats domain.Stats, tasks []domain.Task, habits []domain.Habit) domain.AchievementStats {
	s := domain.AchievementStats{Stats: stats, Habits: len(habits)}
	for _, h := range habits {
		if h.Streak > s.BestStreak {
			s.BestStreak = h.Streak
		}
	}
	for _, t := range tasks {
		subs, ok := t.SubTasks.Get()
		if !ok || len(subs) == 0 {
			continue
		}
		s.TasksWithSteps++
		for _, st := range subs {
			if st.Completed {
				s.SubTasksCompleted++
			}
		}
	}
	return s
}

// ─── Achievement Definitions ────────────────────────────────────────────────

// AllAchievements returns the full achievement catalog.
func AllAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── Getting Started ────────────────────────────────────────────
		{
			ID: "first_task", Title: "First Step", Icon: "🎯",
			Description: "Complete your first task",
			Predicate:   func(s domain.AchievementStats) bool { return s.CompletedTasks >= 1 },
		},
		{
			ID: "first_habit", Title: "Habit Former", Icon: "🌱",
			Description: "Start tracking a habit",
			Predicate:   func(s domain.AchievementStats) bool { return s.Habits >= 1 },
		},
		{
			ID: "first_breakdown", Title: "Divide and Conquer", Icon: "🧩",
			Description: "Break a task down into steps",
			Predicate:   func(s domain.AchievementStats) bool { return s.TasksWithSteps >= 1 },
		},
		{
			ID: "steps_10", Title: "Step by Step", Icon: "👣",
			Description: "Finish 10 subtasks",
			Predicate:   func(s domain.AchievementStats) bool { return s.SubTasksCompleted >= 10 },
		},

		// ── Execution ──────────────────────────────────────────────────
		{
			ID: "tasks_10", Title: "Getting Things Done", Icon: "✅",
			Description: "Have 10 completed tasks on your list",
			Predicate:   func(s domain.AchievementStats) bool { return s.CompletedTasks >= 10 },
		},
		{
			ID: "tasks_50", Title: "Task Master", Icon: "⚙️",
			Description: "Have 50 completed tasks on your list",
			Predicate:   func(s domain.AchievementStats) bool { return s.CompletedTasks >= 50 },
		},
		{
			ID: "score_75", Title: "In the Zone", Icon: "📈",
			Description: "Reach a 75% execution score with at least 4 tasks",
			Predicate:   func(s domain.AchievementStats) bool {
				return s.TotalTasks >= 4 && s.ExecutionScore >= 75
			},
		},
		{
			ID: "clean_sweep", Title: "Clean Sweep", Icon: "🧹",
			Description: "Complete every task on a list of at least 3",
			Predicate:   func(s domain.AchievementStats) bool {
				return s.TotalTasks >= 3 && s.CompletedTasks == s.TotalTasks
			},
		},
		{
			ID: "fully_charged", Title: "Fully Charged", Icon: "⚡",
			Description: "Finish a task on a high-energy day",
			Predicate:   func(s domain.AchievementStats) bool {
				return s.EnergyLevel == domain.EnergyHigh && s.CompletedTasks >= 1
			},
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Title: "Warming Up", Icon: "🔥",
			Description: "Keep a habit streak of 3",
			Predicate:   func(s domain.AchievementStats) bool { return s.BestStreak >= 3 },
		},
		{
			ID: "streak_7", Title: "Week Warrior", Icon: "💪",
			Description: "Keep a habit streak of 7",
			Predicate:   func(s domain.AchievementStats) bool { return s.BestStreak >= 7 },
		},
		{
			ID: "streak_30", Title: "Monthly Machine", Icon: "🏛️",
			Description: "Keep a habit streak of 30",
			Predicate:   func(s domain.AchievementStats) bool { return s.BestStreak >= 30 },
		},

		// ── Progression ────────────────────────────────────────────────
		{
			ID: "xp_1000", Title: "XP Collector", Icon: "💎",
			Description: "Earn 1,000 XP",
			Predicate:   func(s domain.AchievementStats) bool { return s.XP >= 1000 },
		},
		{
			ID: "xp_5000", Title: "XP Hoarder", Icon: "💰",
			Description: "Earn 5,000 XP",
			Predicate:   func(s domain.AchievementStats) bool { return s.XP >= 5000 },
		},
		{
			ID: "level_5", Title: "Rising Star", Icon: "🌅",
			Description: "Reach level 5",
			Predicate:   func(s domain.AchievementStats) bool { return s.Level >= 5 },
		},
		{
			ID: "level_10", Title: "Veteran", Icon: "🎖️",
			Description: "Reach level 10",
			Predicate:   func(s domain.AchievementStats) bool { return s.Level >= 10 },
		},
	}
}
