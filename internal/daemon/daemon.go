package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentum-app/momentum/internal/api"
	"github.com/momentum-app/momentum/internal/app/engagement"
	"github.com/momentum-app/momentum/internal/app/momentum"
	"github.com/momentum-app/momentum/internal/app/reminder"
	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/health"
	"github.com/momentum-app/momentum/internal/infra/gemini"
	"github.com/momentum-app/momentum/internal/infra/notify"
	"github.com/momentum-app/momentum/internal/infra/sqlite"
	"github.com/momentum-app/momentum/internal/logging"
)

// Daemon is the Momentum runtime. It wires together all services.
type Daemon struct {
	Config       Config
	Log          *slog.Logger
	Store        *momentum.Store
	Planner      *momentum.Planner
	DB           *sqlite.DB
	Inbox        *notify.Inbox
	Gate         *notify.Gate
	Achievements *engagement.AchievementService
	AI           *gemini.Client // nil without an API key
	Reminders    *reminder.Scheduler
	Health       *health.Checker
	Server       *api.Server

	clock       domain.Clock
	logCloser   io.Closer
	unsubscribe []func()
	cancel      context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	return newDaemon(cfg, domain.SystemClock)
}

func newDaemon(cfg Config, clock domain.Clock) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	d := &Daemon{Config: cfg, Log: logger, clock: clock, logCloser: closer}
	if err := d.wire(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Daemon) wire() error {
	cfg := d.Config
	loc, _ := cfg.Store.Location() // validated

	// ─── Store ─────────────────────────────────────────────────────────

	opts := momentum.Options{
		Clock:        d.clock,
		Location:     loc,
		LevelPolicy:  domain.LevelPolicy(cfg.Store.LevelPolicy),
		StreakPolicy: domain.StreakPolicy(cfg.Habits.StreakPolicy),
		Logger:       logging.Component(d.Log, "store"),
	}
	if cfg.Store.Seed {
		d.Store = momentum.NewStoreWithState(opts, momentum.SeedState(d.clock.Now()))
	} else {
		d.Store = momentum.NewStore(opts)
	}

	// ─── Inbox, ledger and notifications ───────────────────────────────

	db, err := sqlite.Open()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	d.DB = db
	d.Inbox = notify.NewInbox(db)

	channels := []notify.Channel{d.Inbox}
	if cfg.Notifications.Log {
		channels = append(channels, notify.NewLog(logging.Component(d.Log, "notify")))
	}
	d.Gate = notify.NewGate(
		domain.Permission(cfg.Notifications.Permission),
		notify.Answer(domain.Permission(cfg.Notifications.OnRequest)),
		channels...,
	)

	// ─── AI collaborator ───────────────────────────────────────────────

	var breakdowner domain.Breakdowner
	var reviewer domain.Reviewer
	ai, err := gemini.New(context.Background(), gemini.Config{
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		Language: cfg.AI.Language,
		Timeout:  cfg.AI.TimeoutDuration(),
		Endpoint: cfg.AI.Endpoint,
		Logger:   logging.Component(d.Log, "gemini"),
	})
	switch {
	case err == nil:
		d.AI = ai
		breakdowner, reviewer = ai, ai
	case errors.Is(err, domain.ErrAIUnavailable):
		d.Log.Info("no AI API key configured, breakdown and review disabled")
	default:
		d.Log.Warn("AI collaborator unavailable", "error", err)
	}
	d.Planner = momentum.NewPlanner(d.Store, breakdowner, reviewer)

	// ─── Reminders ─────────────────────────────────────────────────────

	d.Reminders = reminder.New(d.Store, d.Gate, reminder.Config{
		Interval: cfg.Reminders.IntervalDuration(),
		Clock:    d.clock,
		Logger:   logging.Component(d.Log, "reminders"),
	})

	// ─── Observers ─────────────────────────────────────────────────────

	obsLog := logging.Component(d.Log, "observers")
	d.Achievements = engagement.NewAchievementService(db)
	// Whatever the starting state already earns is unlocked silently.
	if _, err := checkAchievements(d.Achievements, d.Store, d.clock); err != nil {
		return fmt.Errorf("baseline achievements: %w", err)
	}
	d.unsubscribe = append(d.unsubscribe,
		d.Store.Subscribe(recordXP(db, obsLog)),
		d.Store.Subscribe(observeMetrics(d.Store)),
		d.Store.Subscribe(notifyLevelUp(d.Gate, d.clock, obsLog)),
		d.Store.Subscribe(unlockAchievements(d.Achievements, d.Store, d.Gate, d.clock, obsLog)),
	)

	// ─── Health ────────────────────────────────────────────────────────

	checks := []health.Check{health.InboxCheck(db)}
	if cfg.Reminders.Enabled {
		checks = append(checks, health.ReminderCheck(d.Reminders, d.clock.Now(), d.clock.Now))
	}
	d.Health = health.NewChecker(cfg.Telemetry.HealthIntervalDuration(), checks...)

	// ─── API ───────────────────────────────────────────────────────────

	srv := api.NewServer(d.Store, d.Planner)
	srv.SetNotifications(d.Inbox, d.Gate)
	srv.SetLedger(db)
	srv.SetAchievements(d.Achievements)
	srv.SetHealth(d.Health)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetListLimit(cfg.Notifications.InboxLimit)
	srv.SetLogger(logging.Component(d.Log, "api"))
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return nil
}

// Start launches the background services: health checks and, when
// enabled, the reminder scheduler.
func (d *Daemon) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	d.Health.Start(ctx)
	if d.Config.Reminders.Enabled {
		d.Reminders.Start(ctx)
	}
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.Start(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // AI calls can be slow
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-sigCh:
			d.Log.Info("shutdown signal received")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Log.Info("momentum serving", "addr", "http://"+addr,
		"reminders", d.Config.Reminders.Enabled,
		"ai", d.AI != nil,
		"metrics", d.Config.Telemetry.Prometheus)

	err := httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-stopped
		d.Close()
		return err
	}
	<-stopped
	d.Close()
	return nil
}

// Close shuts down all daemon resources. It is safe to call more than once.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Reminders != nil {
		d.Reminders.Stop()
	}
	if d.Health != nil {
		d.Health.Stop()
	}
	for _, unsub := range d.unsubscribe {
		unsub()
	}
	d.unsubscribe = nil
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.logCloser != nil {
		_ = d.logCloser.Close()
		d.logCloser = nil
	}
}
