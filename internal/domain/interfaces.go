package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// Infrastructure implements them; the application layer depends on them.

// Clock abstracts wall-clock time so reminder and habit logic can be tested.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the real wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Breakdowner splits a task title into at most MaxSubTasks step titles.
// It never fails: any call or parse failure yields an empty slice.
type Breakdowner interface {
	Breakdown(ctx context.Context, title string) []string
}

// Reviewer writes an advisory narrative summary of the day. It has no
// effect on state.
type Reviewer interface {
	Summarize(ctx context.Context, tasks []Task, stats Stats) (string, error)
}

// NotificationSink delivers one-shot alerts, gated by a permission state.
type NotificationSink interface {
	// Permission returns the current permission state.
	Permission() Permission

	// RequestPermission asks the host for permission and returns the outcome.
	// Only meaningful while the state is PermissionDefault.
	RequestPermission(ctx context.Context) Permission

	// Notify delivers n. Callers check Permission first.
	Notify(ctx context.Context, n Notification) error
}
