// Package notify implements the notification sink: a permission gate in
// front of one or more delivery channels (the sqlite inbox, the log).
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/metrics"
	"github.com/momentum-app/momentum/internal/infra/sqlite"
)

// Channel delivers a notification somewhere a user can see it.
type Channel interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Requester decides the outcome of a permission prompt.
type Requester func(ctx context.Context) domain.Permission

// Answer returns a Requester that always answers p.
func Answer(p domain.Permission) Requester {
	return func(context.Context) domain.Permission { return p }
}

// ─── Gate ───────────────────────────────────────────────────────────────────

// Gate is a domain.NotificationSink that fans out to channels once
// permission has been granted.
type Gate struct {
	mu       sync.RWMutex
	perm     domain.Permission
	request  Requester
	channels []Channel
}

// NewGate creates a gate with an initial permission state. A nil
// requester leaves the state unchanged when asked.
func NewGate(initial domain.Permission, request Requester, channels ...Channel) *Gate {
	if !initial.Valid() {
		initial = domain.PermissionDefault
	}
	return &Gate{perm: initial, request: request, channels: channels}
}

// Permission returns the current permission state.
func (g *Gate) Permission() domain.Permission {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.perm
}

// SetPermission records a decision made outside the gate, e.g. by a client.
func (g *Gate) SetPermission(p domain.Permission) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPermission, p)
	}
	g.mu.Lock()
	g.perm = p
	g.mu.Unlock()
	return nil
}

// RequestPermission asks the requester while the state is still default.
// A decided state is returned as-is.
func (g *Gate) RequestPermission(ctx context.Context) domain.Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.perm != domain.PermissionDefault || g.request == nil {
		return g.perm
	}
	if p := g.request(ctx); p.Valid() {
		g.perm = p
	}
	return g.perm
}

// Notify delivers n to every channel. It fails with
// domain.ErrNotificationUnavailable unless permission is granted.
func (g *Gate) Notify(ctx context.Context, n domain.Notification) error {
	if g.Permission() != domain.PermissionGranted {
		return domain.ErrNotificationUnavailable
	}
	var errs []error
	for _, ch := range g.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ─── Channels ───────────────────────────────────────────────────────────────

// Inbox stores notifications in the sqlite inbox for clients to poll.
type Inbox struct {
	db *sqlite.DB
}

// NewInbox creates an inbox channel backed by db.
func NewInbox(db *sqlite.DB) *Inbox {
	return &Inbox{db: db}
}

// Deliver inserts n as pending.
func (i *Inbox) Deliver(_ context.Context, n domain.Notification) error {
	n.Shown = false
	if _, err := i.db.InsertNotification(n); err != nil {
		return fmt.Errorf("inbox insert: %w", err)
	}
	i.refreshGauge()
	return nil
}

// Pending returns up to limit notifications not yet shown.
func (i *Inbox) Pending(limit int) ([]domain.Notification, error) {
	return i.db.ListPendingNotifications(limit)
}

// History returns up to limit notifications, newest first.
func (i *Inbox) History(limit int) ([]domain.Notification, error) {
	return i.db.ListNotifications(limit)
}

// MarkShown acknowledges a notification.
func (i *Inbox) MarkShown(id int64) error {
	if err := i.db.MarkNotificationShown(id); err != nil {
		return err
	}
	i.refreshGauge()
	return nil
}

func (i *Inbox) refreshGauge() {
	if n, err := i.db.PendingNotificationCount(); err == nil {
		metrics.NotificationsPending.Set(float64(n))
	}
}

// Log writes notifications to a structured logger.
type Log struct {
	log *slog.Logger
}

// NewLog creates a log channel.
func NewLog(logger *slog.Logger) *Log {
	return &Log{log: logger}
}

// Deliver logs n at info level.
func (l *Log) Deliver(_ context.Context, n domain.Notification) error {
	l.log.Info(n.Title, "type", string(n.Type), "body", n.Body, "task_id", n.TaskID)
	return nil
}
