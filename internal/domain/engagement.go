// Package domain — engagement types.
// XP, levels, execution score, achievements and the notifications they produce.
package domain

import "time"

// ─── XP ─────────────────────────────────────────────────────────────────────

// XP rewards.
const (
	XPPerPriorityPoint = 10 // task completion awards 10 * priority
	XPPerHabit         = 25
	XPPerLevel         = 500
)

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPTaskCompleted  XPSource = "TASK_COMPLETED"
	XPHabitCompleted XPSource = "HABIT_COMPLETED"
)

// XPEvent is one XP award.
type XPEvent struct {
	ID     int64     `json:"id,omitempty"`
	Amount int64     `json:"amount"`
	Source XPSource  `json:"source"`
	RefID  string    `json:"ref_id"` // task or habit id
	At     time.Time `json:"at"`
	Total  int64     `json:"total"` // xp after the award
}

// ─── Leveling & streak policies ─────────────────────────────────────────────

// LevelPolicy decides whether the level follows XP.
type LevelPolicy string

const (
	// LevelManual keeps level as an independent field no operation changes.
	LevelManual LevelPolicy = "manual"
	// LevelDerived recomputes level = max(1, xp/XPPerLevel) after every award.
	LevelDerived LevelPolicy = "derived"
)

// LevelForXP returns the derived level for an XP total.
func LevelForXP(xp int64) int {
	lvl := int(xp / XPPerLevel)
	if lvl < 1 {
		return 1
	}
	return lvl
}

// StreakPolicy decides how a habit streak reacts to missed days.
type StreakPolicy string

const (
	// StreakLenient increments on every new completion day, gaps included.
	StreakLenient StreakPolicy = "lenient"
	// StreakStrict restarts at 1 unless the last completion was yesterday.
	StreakStrict StreakPolicy = "strict"
)

// ─── Stats ──────────────────────────────────────────────────────────────────

// Stats is the dashboard snapshot of the momentum metrics.
type Stats struct {
	XP               int64       `json:"xp"`
	Level            int         `json:"level"`
	ExecutionScore   int         `json:"execution_score"`
	CompletedTasks   int         `json:"completed_tasks"`
	TotalTasks       int         `json:"total_tasks"`
	EnergyLevel      EnergyLevel `json:"energy_level"`
	LevelProgressPct float64     `json:"level_progress_pct"`
	XPToNextLevel    int64       `json:"xp_to_next_level"`
}

// ExecutionScore returns completed/total as a rounded percentage.
// Zero tasks score 0: the denominator is at least 1.
func ExecutionScore(completed, total int) int {
	if total < 1 {
		total = 1
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}

// LevelProgress returns the progress toward the next 500-XP mark.
func LevelProgress(xp int64) (pct float64, remaining int64) {
	into := xp % XPPerLevel
	return float64(into) / XPPerLevel * 100, XPPerLevel - into
}

// ─── Notifications ──────────────────────────────────────────────────────────

// Permission is the notification permission state of the host.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDefault Permission = "default" // not yet asked
	PermissionDenied  Permission = "denied"
)

// Valid reports whether p is a known permission state.
func (p Permission) Valid() bool {
	return p == PermissionGranted || p == PermissionDefault || p == PermissionDenied
}

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyReminder    NotificationType = "reminder"
	NotifyLevelUp     NotificationType = "level_up"
	NotifyAchievement NotificationType = "achievement"
)

// Notification is a one-shot user-facing alert.
type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	TaskID    string           `json:"task_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementStats is the snapshot achievement predicates are evaluated on.
type AchievementStats struct {
	Stats
	Habits            int // tracked habits
	BestStreak        int // highest current habit streak
	TasksWithSteps    int // tasks that carry a breakdown
	SubTasksCompleted int
}

// AchievementDef is a catalog entry with its unlock predicate.
type AchievementDef struct {
	ID          string                      `json:"id"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Icon        string                      `json:"icon"`
	Predicate   func(AchievementStats) bool `json:"-"`
}

// UnlockedAchievement records when an achievement was earned.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Achievement is a catalog entry merged with its unlock state.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  Optional[time.Time] `json:"unlocked_at,omitzero"`
}
