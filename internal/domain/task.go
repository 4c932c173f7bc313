// Package domain holds the pure Momentum types: tasks, habits, the
// gamification stats derived from them, and the collaborator interfaces
// the application layer depends on.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ─── Enumerations ───────────────────────────────────────────────────────────

// Category is the fixed set of task categories.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning:
		return true
	}
	return false
}

// Quadrant is the Eisenhower-matrix classification of a task.
//
// Only Do and Schedule are produced by QuadrantFor. Delegate and Eliminate
// are part of the matrix but no derivation rule reaches them yet.
type Quadrant string

const (
	QuadrantDo        Quadrant = "do"
	QuadrantSchedule  Quadrant = "schedule"
	QuadrantDelegate  Quadrant = "delegate"
	QuadrantEliminate Quadrant = "eliminate"
)

// QuadrantFor derives the quadrant from a priority: Do iff priority >= 4.
func QuadrantFor(priority int) Quadrant {
	if priority >= 4 {
		return QuadrantDo
	}
	return QuadrantSchedule
}

// EnergyLevel is the user's self-reported capacity for the day.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// Valid reports whether e is a known energy level.
func (e EnergyLevel) Valid() bool {
	return e == EnergyLow || e == EnergyMedium || e == EnergyHigh
}

// Priority bounds.
const (
	MinPriority = 1
	MaxPriority = 5
)

// MaxSubTasks caps how many steps a breakdown may attach to a task.
const MaxSubTasks = 5

// ─── Task ───────────────────────────────────────────────────────────────────

// SubTask is a step of a parent Task. It has no lifecycle of its own.
type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a single to-do item in the ordered task list.
type Task struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  Optional[string]    `json:"description,omitzero"`
	Category     Category            `json:"category"`
	Priority     int                 `json:"priority"`
	Duration     int                 `json:"duration"` // minutes
	Deadline     time.Time           `json:"deadline"`
	Reminder     Optional[time.Time] `json:"reminder,omitzero"`
	ReminderSent bool                `json:"reminder_sent"`
	Completed    bool                `json:"completed"`
	Quadrant     Quadrant            `json:"quadrant"`
	IsRecurring  bool                `json:"is_recurring"`
	SubTasks     Optional[[]SubTask] `json:"sub_tasks,omitzero"`
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	if subs, ok := t.SubTasks.Get(); ok {
		cp := make([]SubTask, len(subs))
		copy(cp, subs)
		t.SubTasks = Some(cp)
	}
	return t
}

// ReminderDue reports whether the task's reminder should fire at now.
func (t Task) ReminderDue(now time.Time) bool {
	if t.Completed || t.ReminderSent {
		return false
	}
	at, ok := t.Reminder.Get()
	return ok && !now.Before(at)
}

// SubTaskProgress returns the rounded percentage of completed subtasks, 0 if none.
func (t Task) SubTaskProgress() int {
	subs, _ := t.SubTasks.Get()
	if len(subs) == 0 {
		return 0
	}
	done := 0
	for _, st := range subs {
		if st.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(subs)) * 100))
}

// NewTask carries the arguments of an add-task operation.
type NewTask struct {
	Title       string              `json:"title"`
	Priority    int                 `json:"priority"`
	Category    Category            `json:"category"`
	Duration    int                 `json:"duration"`
	Description Optional[string]    `json:"description,omitzero"`
	Deadline    Optional[time.Time] `json:"deadline,omitzero"`
	Reminder    Optional[time.Time] `json:"reminder,omitzero"`
	IsRecurring bool                `json:"is_recurring"`
}

// ValidateNewTask checks the caller preconditions of adding a task.
// The store accepts anything; front doors such as the HTTP API call this first.
func ValidateNewTask(in NewTask) error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title must not be empty")
	}
	if in.Priority < MinPriority || in.Priority > MaxPriority {
		problems = append(problems, fmt.Sprintf("priority must be %d-%d, got %d", MinPriority, MaxPriority, in.Priority))
	}
	if in.Duration <= 0 {
		problems = append(problems, fmt.Sprintf("duration must be positive, got %d", in.Duration))
	}
	if !in.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", in.Category))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTask, strings.Join(problems, "; "))
	}
	return nil
}

// TaskUpdate is a field-level partial update. Unset fields are left alone.
type TaskUpdate struct {
	Title        Optional[string]    `json:"title,omitzero"`
	Description  Optional[string]    `json:"description,omitzero"`
	Category     Optional[Category]  `json:"category,omitzero"`
	Priority     Optional[int]       `json:"priority,omitzero"`
	Duration     Optional[int]       `json:"duration,omitzero"`
	Deadline     Optional[time.Time] `json:"deadline,omitzero"`
	Reminder     Optional[time.Time] `json:"reminder,omitzero"`
	ReminderSent Optional[bool]      `json:"reminder_sent,omitzero"`
	Completed    Optional[bool]      `json:"completed,omitzero"`
	IsRecurring  Optional[bool]      `json:"is_recurring,omitzero"`
	SubTasks     Optional[[]SubTask] `json:"sub_tasks,omitzero"`
}

// Apply merges u into t and enforces the derived-field invariants:
// a changed reminder clears ReminderSent, a priority recomputes the quadrant.
func (u TaskUpdate) Apply(t Task) Task {
	prevReminder := t.Reminder

	if v, ok := u.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := u.Description.Get(); ok {
		t.Description = Some(v)
	}
	if v, ok := u.Category.Get(); ok {
		t.Category = v
	}
	if v, ok := u.Priority.Get(); ok {
		t.Priority = v
	}
	if v, ok := u.Duration.Get(); ok {
		t.Duration = v
	}
	if v, ok := u.Deadline.Get(); ok {
		t.Deadline = v
	}
	if v, ok := u.ReminderSent.Get(); ok {
		t.ReminderSent = v
	}
	if v, ok := u.Completed.Get(); ok {
		t.Completed = v
	}
	if v, ok := u.IsRecurring.Get(); ok {
		t.IsRecurring = v
	}
	if v, ok := u.SubTasks.Get(); ok {
		cp := make([]SubTask, len(v))
		copy(cp, v)
		t.SubTasks = Some(cp)
	}
	if v, ok := u.Reminder.Get(); ok {
		t.Reminder = Some(v)
		if old, had := prevReminder.Get(); !had || !old.Equal(v) {
			t.ReminderSent = false
		}
	}
	if u.Priority.IsSet() {
		t.Quadrant = QuadrantFor(t.Priority)
	}
	return t
}
