package momentum_test

import (
	"errors"
	"testing"
	"time"

	"github.com/momentum-app/momentum/internal/app/momentum"
	"github.com/momentum-app/momentum/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Habit Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestToggleHabit_FirstCompletion(t *testing.T) {
	store, clock := testStore(t)
	h := store.AddHabit("read")

	done, err := store.ToggleHabit(h.ID)
	if err != nil || !done {
		t.Fatalf("toggle: done=%v err=%v", done, err)
	}

	got, _ := store.Habit(h.ID)
	today := domain.DateOf(clock.Now())
	if got.Streak != 1 {
		t.Errorf("expected streak 1, got %d", got.Streak)
	}
	if got.LastCompleted != today {
		t.Errorf("last completed = %s, want %s", got.LastCompleted, today)
	}
	if len(got.History) != 1 || got.History[0] != today {
		t.Errorf("history = %v", got.History)
	}
	if xp := store.XP(); xp != 25 {
		t.Errorf("expected 25 XP, got %d", xp)
	}
}

func TestToggleHabit_SameDayIdempotent(t *testing.T) {
	store, clock := testStore(t)
	h := store.AddHabit("read")

	_, _ = store.ToggleHabit(h.ID)
	clock.Advance(3 * time.Hour) // still the same day
	done, err := store.ToggleHabit(h.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if done {
		t.Error("second toggle on the same day should be a no-op")
	}

	got, _ := store.Habit(h.ID)
	if got.Streak != 1 || len(got.History) != 1 {
		t.Errorf("streak=%d history=%d, want 1/1", got.Streak, len(got.History))
	}
	if xp := store.XP(); xp != 25 {
		t.Errorf("expected XP unchanged at 25, got %d", xp)
	}
}

func TestToggleHabit_ConsecutiveDaysPrependHistory(t *testing.T) {
	store, clock := testStore(t)
	h := store.AddHabit("read")

	for i := 0; i < 3; i++ {
		_, _ = store.ToggleHabit(h.ID)
		clock.Advance(24 * time.Hour)
	}

	got, _ := store.Habit(h.ID)
	if got.Streak != 3 {
		t.Errorf("expected streak 3, got %d", got.Streak)
	}
	if !(got.History[0].Day == 3 && got.History[2].Day == 1) {
		t.Errorf("history should be most-recent-first: %v", got.History)
	}
}

func TestToggleHabit_LenientIgnoresGaps(t *testing.T) {
	store, clock := testStore(t)
	h := store.AddHabit("read")

	_, _ = store.ToggleHabit(h.ID)
	clock.Advance(7 * 24 * time.Hour)
	_, _ = store.ToggleHabit(h.ID)

	got, _ := store.Habit(h.ID)
	if got.Streak != 2 {
		t.Errorf("lenient streak should keep growing across a gap, got %d", got.Streak)
	}
}

func TestToggleHabit_StrictResetsAfterGap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	store := momentum.NewStore(momentum.Options{Clock: clock, StreakPolicy: domain.StreakStrict})
	h := store.AddHabit("read")

	_, _ = store.ToggleHabit(h.ID)
	clock.Advance(24 * time.Hour)
	_, _ = store.ToggleHabit(h.ID)
	if got, _ := store.Habit(h.ID); got.Streak != 2 {
		t.Fatalf("consecutive day should extend, got %d", got.Streak)
	}

	clock.Advance(3 * 24 * time.Hour)
	_, _ = store.ToggleHabit(h.ID)
	if got, _ := store.Habit(h.ID); got.Streak != 1 {
		t.Errorf("strict streak should reset to 1 after a gap, got %d", got.Streak)
	}
}

func TestToggleHabit_NotFound(t *testing.T) {
	store, _ := testStore(t)
	if _, err := store.ToggleHabit("nope"); !errors.Is(err, domain.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestToggleHabit_UsesConfiguredLocation(t *testing.T) {
	// 23:30 UTC is already the next day in UTC+2.
	clock := &fakeClock{now: time.Date(2025, 7, 1, 23, 30, 0, 0, time.UTC)}
	loc := time.FixedZone("UTC+2", 2*60*60)
	store := momentum.NewStore(momentum.Options{Clock: clock, Location: loc})
	h := store.AddHabit("read")

	_, _ = store.ToggleHabit(h.ID)
	got, _ := store.Habit(h.ID)
	if got.LastCompleted.Day != 2 {
		t.Errorf("expected local date 2025-07-02, got %s", got.LastCompleted)
	}
}

func TestToggleHabit_SeededHabitContinues(t *testing.T) {
	now := time.Date(2023, 10, 27, 9, 0, 0, 0, time.UTC)
	store := momentum.NewStoreWithState(momentum.Options{Clock: &fakeClock{now: now}}, momentum.SeedState(now))

	done, _ := store.ToggleHabit("h1")
	if !done {
		t.Fatal("expected completion on a new day")
	}
	got, _ := store.Habit("h1")
	if got.Streak != 6 || len(got.History) != 6 {
		t.Errorf("streak=%d history=%d, want 6/6", got.Streak, len(got.History))
	}
	if store.XP() != momentum.SeedXP+25 {
		t.Errorf("xp = %d, want %d", store.XP(), momentum.SeedXP+25)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Subtask Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestApplyBreakdown_CapsAndSkipsBlanks(t *testing.T) {
	store, _ := testStore(t)
	task := addTask(store, "big", 3)

	subs, err := store.ApplyBreakdown(task.ID, []string{"1", " ", "2", "3", "4", "5", "6"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(subs) != domain.MaxSubTasks {
		t.Fatalf("expected %d subtasks, got %d", domain.MaxSubTasks, len(subs))
	}
	if subs[4].Title != "5" {
		t.Errorf("last kept step = %q, want 5", subs[4].Title)
	}
}

func TestApplyBreakdown_MissingTask(t *testing.T) {
	store, _ := testStore(t)
	if _, err := store.ApplyBreakdown("nope", nil); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggleSubTask(t *testing.T) {
	store, _ := testStore(t)
	task := addTask(store, "big", 3)
	subs, _ := store.ApplyBreakdown(task.ID, []string{"a", "b"})

	if err := store.ToggleSubTask(task.ID, subs[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ := store.Task(task.ID)
	if p := got.SubTaskProgress(); p != 50 {
		t.Errorf("expected 50%% progress, got %d", p)
	}
	if store.XP() != 0 {
		t.Error("subtasks award no XP")
	}

	if err := store.ToggleSubTask(task.ID, "nope"); !errors.Is(err, domain.ErrSubTaskNotFound) {
		t.Errorf("expected ErrSubTaskNotFound, got %v", err)
	}
	if err := store.ToggleSubTask("nope", subs[0].ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
