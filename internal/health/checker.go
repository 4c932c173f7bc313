// Package health runs periodic self-checks and keeps the latest results
// for the /health endpoint.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/momentum-app/momentum/internal/infra/metrics"
)

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	now      func() time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewChecker creates a checker running checks every interval.
func NewChecker(interval time.Duration, checks ...Check) *Checker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Checker{interval: interval, checks: checks, now: time.Now}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunAll(ctx)
		}
	}
}

// Start runs the check loop in a background goroutine. Stop releases it.
func (c *Checker) Start(ctx context.Context) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		c.Run(ctx)
	}(c.done)
}

// Stop cancels a started loop and waits for it to exit, including any
// check in flight. It is safe to call more than once.
func (c *Checker) Stop() {
	c.runMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunAll runs every check once and records the results.
func (c *Checker) RunAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: c.now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			if check.RecoverFn != nil {
				_ = check.RecoverFn(ctx)
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

// Pinger is satisfied by the sqlite inbox.
type Pinger interface {
	Ping() error
}

// InboxCheck verifies the notification inbox database answers.
func InboxCheck(db Pinger) Check {
	return Check{
		Name: "inbox",
		CheckFn: func(ctx context.Context) error {
			if err := db.Ping(); err != nil {
				return fmt.Errorf("inbox ping: %w", err)
			}
			return nil
		},
	}
}

// Ticker is satisfied by the reminder scheduler.
type Ticker interface {
	LastTick() time.Time
	Interval() time.Duration
}

// ReminderCheck fails when the scheduler has not completed a check in
// three intervals. Before the first tick the reference point is started.
func ReminderCheck(s Ticker, started time.Time, now func() time.Time) Check {
	if now == nil {
		now = time.Now
	}
	return Check{
		Name: "reminders",
		CheckFn: func(ctx context.Context) error {
			ref := s.LastTick()
			if ref.IsZero() {
				ref = started
			}
			if stale := now().Sub(ref); stale > 3*s.Interval() {
				return fmt.Errorf("reminder scheduler idle for %s", stale.Round(time.Second))
			}
			return nil
		},
	}
}
