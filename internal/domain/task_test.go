package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// ─── Quadrant Tests ─────────────────────────────────────────────────────────

func TestQuadrantFor(t *testing.T) {
	tests := []struct {
		priority int
		want     Quadrant
	}{
		{1, QuadrantSchedule},
		{2, QuadrantSchedule},
		{3, QuadrantSchedule},
		{4, QuadrantDo},
		{5, QuadrantDo},
	}
	for _, tt := range tests {
		if got := QuadrantFor(tt.priority); got != tt.want {
			t.Errorf("QuadrantFor(%d) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Category("chores").Valid() {
		t.Error("unknown category should be invalid")
	}
}

// ─── TaskUpdate Tests ───────────────────────────────────────────────────────

func TestTaskUpdate_ReminderChangeResetsSent(t *testing.T) {
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	task := Task{Reminder: Some(base), ReminderSent: true}

	got := TaskUpdate{Reminder: Some(base.Add(time.Hour))}.Apply(task)
	if got.ReminderSent {
		t.Error("changed reminder should reset ReminderSent")
	}
}

func TestTaskUpdate_SameReminderKeepsSent(t *testing.T) {
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	task := Task{Reminder: Some(base), ReminderSent: true}

	got := TaskUpdate{Reminder: Some(base)}.Apply(task)
	if !got.ReminderSent {
		t.Error("re-submitting the same reminder should leave ReminderSent alone")
	}
}

func TestTaskUpdate_ReminderChangeWinsOverSentFlag(t *testing.T) {
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	task := Task{Reminder: Some(base)}

	got := TaskUpdate{Reminder: Some(base.Add(time.Minute)), ReminderSent: Some(true)}.Apply(task)
	if got.ReminderSent {
		t.Error("a new reminder must come out pending")
	}
}

func TestTaskUpdate_PriorityRecomputesQuadrant(t *testing.T) {
	task := Task{Priority: 2, Quadrant: QuadrantSchedule}

	got := TaskUpdate{Priority: Some(4)}.Apply(task)
	if got.Quadrant != QuadrantDo {
		t.Errorf("expected Do after priority 4, got %q", got.Quadrant)
	}

	got = TaskUpdate{Priority: Some(3)}.Apply(got)
	if got.Quadrant != QuadrantSchedule {
		t.Errorf("expected Schedule after priority 3, got %q", got.Quadrant)
	}
}

func TestTaskUpdate_UnsetFieldsUntouched(t *testing.T) {
	task := Task{Title: "keep", Priority: 5, Quadrant: QuadrantDo, Duration: 30}
	got := TaskUpdate{Duration: Some(45)}.Apply(task)

	if got.Title != "keep" || got.Priority != 5 || got.Quadrant != QuadrantDo {
		t.Errorf("unexpected change: %+v", got)
	}
	if got.Duration != 45 {
		t.Errorf("expected duration 45, got %d", got.Duration)
	}
}

func TestTaskUpdate_JSONPartial(t *testing.T) {
	var u TaskUpdate
	if err := json.Unmarshal([]byte(`{"priority":4,"reminder":"2025-07-01T09:30:00Z"}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p, ok := u.Priority.Get(); !ok || p != 4 {
		t.Errorf("priority = %v/%v, want 4", p, ok)
	}
	if !u.Reminder.IsSet() {
		t.Error("reminder should be set")
	}
	if u.Title.IsSet() || u.Completed.IsSet() {
		t.Error("absent fields must stay unset")
	}
}

// ─── Validation Tests ───────────────────────────────────────────────────────

func TestValidateNewTask(t *testing.T) {
	ok := NewTask{Title: "write", Priority: 3, Category: CategoryWork, Duration: 30}
	if err := ValidateNewTask(ok); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	bad := []NewTask{
		{Title: " ", Priority: 3, Category: CategoryWork, Duration: 30},
		{Title: "x", Priority: 0, Category: CategoryWork, Duration: 30},
		{Title: "x", Priority: 6, Category: CategoryWork, Duration: 30},
		{Title: "x", Priority: 3, Category: CategoryWork, Duration: 0},
		{Title: "x", Priority: 3, Category: "chores", Duration: 30},
	}
	for i, in := range bad {
		if err := ValidateNewTask(in); !errors.Is(err, ErrInvalidTask) {
			t.Errorf("case %d: expected ErrInvalidTask, got %v", i, err)
		}
	}
}

// ─── Derived Metric Tests ───────────────────────────────────────────────────

func TestTask_SubTaskProgress(t *testing.T) {
	if p := (Task{}).SubTaskProgress(); p != 0 {
		t.Errorf("no subtasks should be 0%%, got %d", p)
	}
	task := Task{SubTasks: Some([]SubTask{{Completed: true}, {}, {}})}
	if p := task.SubTaskProgress(); p != 33 {
		t.Errorf("expected 33%%, got %d", p)
	}
}

func TestTask_ReminderDue(t *testing.T) {
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	task := Task{Reminder: Some(at)}

	if task.ReminderDue(at.Add(-time.Second)) {
		t.Error("not due before the reminder")
	}
	if !task.ReminderDue(at) {
		t.Error("due exactly at the reminder")
	}
	task.ReminderSent = true
	if task.ReminderDue(at.Add(time.Hour)) {
		t.Error("sent reminders are never due again")
	}
	if (Task{Completed: true, Reminder: Some(at)}).ReminderDue(at) {
		t.Error("completed tasks are never due")
	}
}

func TestExecutionScore(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := ExecutionScore(tt.completed, tt.total); got != tt.want {
			t.Errorf("ExecutionScore(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	pct, remaining := LevelProgress(1250)
	if pct != 50 {
		t.Errorf("expected 50%%, got %.1f", pct)
	}
	if remaining != 250 {
		t.Errorf("expected 250 remaining, got %d", remaining)
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{499, 1},
		{1000, 2},
		{2600, 5},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}
