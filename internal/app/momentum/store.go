// Package momentum implements the Momentum state store.
// It owns the task list, habits, energy level, XP and level, enforces
// their invariants, and derives the dashboard metrics on read.
// State lives in memory only.
package momentum

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/momentum-app/momentum/internal/domain"
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Clock        domain.Clock       // default: domain.SystemClock
	Location     *time.Location     // calendar for habit days; default UTC
	LevelPolicy  domain.LevelPolicy // default: domain.LevelManual
	StreakPolicy domain.StreakPolicy
	NewID        func() string // default: uuid.NewString
	Logger       *slog.Logger
}

// State is a full store snapshot, used to seed a Store.
type State struct {
	Tasks  []domain.Task
	Habits []domain.Habit
	Energy domain.EnergyLevel
	XP     int64
	Level  int
}

// Store is the single authoritative holder of Momentum state.
// All methods are safe for concurrent use; mutations are serialized and
// each one sees every mutation committed before it.
type Store struct {
	mu     sync.Mutex
	tasks  []domain.Task
	habits []domain.Habit // insertion order, for stable listing
	energy domain.EnergyLevel
	xp     int64
	level  int

	clock  domain.Clock
	loc    *time.Location
	levels domain.LevelPolicy
	streak domain.StreakPolicy
	newID  func() string
	log    *slog.Logger
	events *bus
}

// NewStore creates an empty store: no tasks, no habits, 0 XP, level 1.
func NewStore(opts Options) *Store {
	return NewStoreWithState(opts, State{})
}

// NewStoreWithState creates a store holding a copy of st.
func NewStoreWithState(opts Options, st State) *Store {
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.LevelPolicy == "" {
		opts.LevelPolicy = domain.LevelManual
	}
	if opts.StreakPolicy == "" {
		opts.StreakPolicy = domain.StreakLenient
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !st.Energy.Valid() {
		st.Energy = domain.EnergyMedium
	}
	if st.Level < 1 {
		st.Level = 1
	}

	s := &Store{
		tasks:  cloneTasks(st.Tasks),
		habits: cloneHabits(st.Habits),
		energy: st.Energy,
		xp:     st.XP,
		level:  st.Level,
		clock:  opts.Clock,
		loc:    opts.Location,
		levels: opts.LevelPolicy,
		streak: opts.StreakPolicy,
		newID:  opts.NewID,
		log:    opts.Logger,
	}
	s.events = newBus(opts.Logger)
	return s
}

// Subscribe registers h for every store event. The returned function
// removes the subscription and may be called more than once.
func (s *Store) Subscribe(h Handler) (unsubscribe func()) {
	return s.events.subscribe(h)
}

// ─── Task Operations ────────────────────────────────────────────────────────

// AddTask creates a task at the head of the list and returns it.
//
// Precondition: in.Title is non-empty (see domain.ValidateNewTask). The
// store does not reject anything. Deadline defaults to now.
func (s *Store) AddTask(in domain.NewTask) domain.Task {
	task := domain.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Duration:    in.Duration,
		Deadline:    in.Deadline.OrElse(s.clock.Now()),
		Reminder:    in.Reminder,
		Quadrant:    domain.QuadrantFor(in.Priority),
		IsRecurring: in.IsRecurring,
	}

	s.mu.Lock()
	s.tasks = append([]domain.Task{task}, s.tasks...)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTaskAdded, Task: task.Clone()})
	return task.Clone()
}

// UpdateTask merges u into the task with the given id.
// A reminder set to a different value makes the task's reminder pending
// again; a priority recomputes the quadrant.
func (s *Store) UpdateTask(id string, u domain.TaskUpdate) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("update: task not found", "task_id", id)
		return domain.ErrTaskNotFound
	}
	s.tasks[i] = u.Apply(s.tasks[i])
	updated := s.tasks[i].Clone()
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTaskUpdated, Task: updated})
	return nil
}

// MarkReminderSent sets ReminderSent on a task whose reminder is still the
// pending one scheduled at at. It reports false without changing anything
// when the task was completed, already marked, or rescheduled since.
func (s *Store) MarkReminderSent(id string, at time.Time) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, domain.ErrTaskNotFound
	}
	t := s.tasks[i]
	current, ok := t.Reminder.Get()
	if !ok || !current.Equal(at) || t.Completed || t.ReminderSent {
		s.mu.Unlock()
		return false, nil
	}
	s.tasks[i].ReminderSent = true
	updated := s.tasks[i].Clone()
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTaskUpdated, Task: updated})
	return true, nil
}

// ReorderTasks moves the task at from so that it ends up at index to,
// shifting the tasks in between. [A B C D] with (0, 2) gives [B C A D].
func (s *Store) ReorderTasks(from, to int) error {
	s.mu.Lock()
	n := len(s.tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return domain.ErrIndexOutOfRange
	}
	if from != to {
		moved := s.tasks[from]
		rest := append(s.tasks[:from:from], s.tasks[from+1:]...)
		out := make([]domain.Task, 0, n)
		out = append(out, rest[:to]...)
		out = append(out, moved)
		out = append(out, rest[to:]...)
		s.tasks = out
	}
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTasksReordered})
	return nil
}

// ToggleTask flips a task's completion. Completing awards 10 XP per
// priority point; un-completing takes nothing back.
func (s *Store) ToggleTask(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed

	events := []Event{{Type: EventTaskToggled, Task: t.Clone()}}
	if t.Completed {
		events = append(events, s.awardLocked(int64(domain.XPPerPriorityPoint*t.Priority), domain.XPTaskCompleted, t.ID)...)
	}
	s.mu.Unlock()

	s.events.publish(events...)
	return nil
}

// DeleteTask removes a task. Deleting an absent id changes nothing and
// reports ErrTaskNotFound.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTaskDeleted, Task: removed})
	return nil
}

// ReplaceTasks swaps the whole task list for a copy of tasks. Subscribers
// holding a view of the old list receive EventTasksReplaced.
func (s *Store) ReplaceTasks(tasks []domain.Task) {
	s.mu.Lock()
	s.tasks = cloneTasks(tasks)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTasksReplaced})
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Tasks returns a copy of the ordered task list.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Task returns a copy of one task.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return domain.Task{}, false
}

// ExecutionScore returns the percentage of completed tasks, 0 with no tasks.
func (s *Store) ExecutionScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ExecutionScore(s.completedLocked(), len(s.tasks))
}

// XP returns the experience total.
func (s *Store) XP() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xp
}

// Level returns the current level.
func (s *Store) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Stats returns the dashboard metrics in one consistent snapshot.
func (s *Store) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := s.completedLocked()
	pct, remaining := domain.LevelProgress(s.xp)
	return domain.Stats{
		XP:               s.xp,
		Level:            s.level,
		ExecutionScore:   domain.ExecutionScore(completed, len(s.tasks)),
		CompletedTasks:   completed,
		TotalTasks:       len(s.tasks),
		EnergyLevel:      s.energy,
		LevelProgressPct: pct,
		XPToNextLevel:    remaining,
	}
}

// ─── Energy ─────────────────────────────────────────────────────────────────

// EnergyLevel returns the current energy level.
func (s *Store) EnergyLevel() domain.EnergyLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.energy
}

// SetEnergyLevel records the user's energy for the day.
func (s *Store) SetEnergyLevel(e domain.EnergyLevel) error {
	if !e.Valid() {
		return domain.ErrInvalidEnergyLevel
	}
	s.mu.Lock()
	s.energy = e
	s.mu.Unlock()

	s.events.publish(Event{Type: EventEnergyChanged})
	return nil
}

// ─── Internals ──────────────────────────────────────────────────────────────

// awardLocked adds XP and, under the derived policy, raises the level.
// Caller holds s.mu; the returned events are published after unlocking.
func (s *Store) awardLocked(amount int64, source domain.XPSource, ref string) []Event {
	s.xp += amount
	events := []Event{{Type: EventXPAwarded, XP: domain.XPEvent{
		Amount: amount,
		Source: source,
		RefID:  ref,
		At:     s.clock.Now(),
		Total:  s.xp,
	}}}

	if s.levels == domain.LevelDerived {
		if lvl := domain.LevelForXP(s.xp); lvl > s.level {
			s.level = lvl
			events = append(events, Event{Type: EventLevelUp, Level: lvl})
		}
	}
	return events
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) completedLocked() int {
	n := 0
	for _, t := range s.tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

func cloneTasks(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func cloneHabits(in []domain.Habit) []domain.Habit {
	out := make([]domain.Habit, len(in))
	for i, h := range in {
		out[i] = h.Clone()
	}
	return out
}
