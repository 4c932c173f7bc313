// Package reminder runs the periodic reminder check against the task store.
// Each reminder fires at most once: when its time has passed the scheduler
// notifies (if permitted) and marks the task's reminder as sent, whether or
// not a notification could be shown.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentum-app/momentum/internal/app/momentum"
	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/metrics"
)

// DefaultInterval is how often reminders are checked.
const DefaultInterval = 60 * time.Second

// Config configures a Scheduler.
type Config struct {
	Interval time.Duration // default DefaultInterval
	Clock    domain.Clock  // default domain.SystemClock
	Logger   *slog.Logger
}

// Scheduler polls the store for due reminders.
type Scheduler struct {
	store    *momentum.Store
	sink     domain.NotificationSink
	interval time.Duration
	clock    domain.Clock
	log      *slog.Logger

	lastTick atomic.Int64 // unix nanos of the last completed tick

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler. sink may be nil, in which case reminders are
// processed without any notification.
func New(store *momentum.Store, sink domain.NotificationSink, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		store:    store,
		sink:     sink,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		log:      cfg.Logger,
	}
}

// Interval returns the polling interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// LastTick returns when the last check finished (zero if never).
func (s *Scheduler) LastTick() time.Time {
	n := s.lastTick.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// RequestPermission asks the sink for permission if it has not been
// decided yet. Called once when the scheduler starts.
func (s *Scheduler) RequestPermission(ctx context.Context) domain.Permission {
	if s.sink == nil {
		return domain.PermissionDenied
	}
	p := s.sink.Permission()
	if p == domain.PermissionDefault {
		p = s.sink.RequestPermission(ctx)
		s.log.Info("notification permission requested", "result", string(p))
	}
	return p
}

// Tick runs one reminder check against the current task snapshot and
// returns how many reminders were processed.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	processed := 0
	for _, task := range s.store.Tasks() {
		if !task.ReminderDue(now) {
			continue
		}

		at, _ := task.Reminder.Get()
		delivered := s.notify(ctx, task, now)

		// Marked regardless of delivery: the reminder's moment has been handled.
		marked, err := s.store.MarkReminderSent(task.ID, at)
		if err != nil {
			// Deleted between snapshot and mark; nothing left to mark.
			s.log.Debug("reminder target vanished", "task_id", task.ID)
			continue
		}
		if !marked {
			// Rescheduled or completed meanwhile; the new state stands.
			s.log.Debug("reminder changed during tick", "task_id", task.ID)
		}
		processed++
		metrics.RemindersProcessed.WithLabelValues(fmt.Sprint(delivered)).Inc()
	}
	s.lastTick.Store(s.clock.Now().UnixNano())
	return processed
}

func (s *Scheduler) notify(ctx context.Context, task domain.Task, now time.Time) bool {
	if s.sink == nil || s.sink.Permission() != domain.PermissionGranted {
		return false
	}
	n := domain.Notification{
		Type:      domain.NotifyReminder,
		Title:     "Reminder: " + task.Title,
		Body:      "Time to start your task: " + task.Title,
		TaskID:    task.ID,
		CreatedAt: now,
	}
	if err := s.sink.Notify(ctx, n); err != nil {
		s.log.Warn("reminder notification failed", "task_id", task.ID, "error", err)
		return false
	}
	s.log.Info("reminder fired", "task_id", task.ID)
	return true
}

// Run checks reminders every interval until ctx is cancelled. When the
// store's task list is replaced wholesale the interval restarts against
// the new list.
func (s *Scheduler) Run(ctx context.Context) {
	replaced := make(chan struct{}, 1)
	unsubscribe := s.store.Subscribe(func(ev momentum.Event) {
		if ev.Type != momentum.EventTasksReplaced {
			return
		}
		select {
		case replaced <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	s.RequestPermission(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-replaced:
			ticker.Reset(s.interval)
			s.log.Debug("task list replaced, reminder interval restarted")
		case <-ticker.C:
			s.Tick(ctx, s.clock.Now())
		}
	}
}

// Start runs the scheduler in a background goroutine. Stop releases it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		s.Run(ctx)
	}(s.done)
}

// Stop cancels a started scheduler and waits for its goroutine to exit.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
