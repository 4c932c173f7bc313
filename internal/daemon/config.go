// Package daemon manages the Momentum daemon lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/momentum-app/momentum/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API           APIConfig           `toml:"api"`
	Store         StoreConfig         `toml:"store"`
	Reminders     RemindersConfig     `toml:"reminders"`
	Habits        HabitsConfig        `toml:"habits"`
	AI            AIConfig            `toml:"ai"`
	Notifications NotificationsConfig `toml:"notifications"`
	Logging       LoggingConfig       `toml:"logging"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StoreConfig controls the in-memory store.
type StoreConfig struct {
	Seed        bool   `toml:"seed"`         // start from the starter dashboard
	LevelPolicy string `toml:"level_policy"` // manual | derived
	Timezone    string `toml:"timezone"`     // IANA name used for "today"
}

// RemindersConfig controls the reminder scheduler.
type RemindersConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// HabitsConfig controls habit streaks.
type HabitsConfig struct {
	StreakPolicy string `toml:"streak_policy"` // lenient | strict
}

// AIConfig controls the Gemini collaborator.
type AIConfig struct {
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	Timeout  string `toml:"timeout"`
	Endpoint string `toml:"endpoint"`
}

// NotificationsConfig controls the notification gate.
type NotificationsConfig struct {
	Permission string `toml:"permission"` // initial state: default | granted | denied
	OnRequest  string `toml:"on_request"` // answer given when permission is requested
	Log        bool   `toml:"log"`        // also write notifications to the log
	InboxLimit int    `toml:"inbox_limit"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

const (
	defaultReminderInterval = 60 * time.Second
	defaultAITimeout        = 30 * time.Second
	defaultHealthInterval   = 30 * time.Second
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7420,
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Seed:        true,
			LevelPolicy: string(domain.LevelManual),
			Timezone:    "UTC",
		},
		Reminders: RemindersConfig{
			Enabled:  true,
			Interval: "60s",
		},
		Habits: HabitsConfig{
			StreakPolicy: string(domain.StreakLenient),
		},
		AI: AIConfig{
			Model:    "gemini-3-flash-preview",
			Language: "English",
			Timeout:  "30s",
		},
		Notifications: NotificationsConfig{
			Permission: string(domain.PermissionDefault),
			OnRequest:  string(domain.PermissionGranted),
			Log:        true,
			InboxLimit: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			HealthInterval: "30s",
		},
	}
}

// LoadConfig reads ~/.momentum/config.toml, falling back to defaults.
// A .env file in the home or working directory is loaded first, and
// GEMINI_API_KEY or MOMENTUM_AI_API_KEY override ai.api_key.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	home := momentumHome()

	if err := loadDotEnv(filepath.Join(home, ".env"), ".env"); err != nil {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.momentum/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate reports every invalid enumerated setting.
func (c Config) Validate() error {
	var errs []error
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	switch domain.LevelPolicy(c.Store.LevelPolicy) {
	case domain.LevelManual, domain.LevelDerived:
	default:
		errs = append(errs, fmt.Errorf("store.level_policy %q must be manual or derived", c.Store.LevelPolicy))
	}
	switch domain.StreakPolicy(c.Habits.StreakPolicy) {
	case domain.StreakLenient, domain.StreakStrict:
	default:
		errs = append(errs, fmt.Errorf("habits.streak_policy %q must be lenient or strict", c.Habits.StreakPolicy))
	}
	if _, err := c.Store.Location(); err != nil {
		errs = append(errs, err)
	}
	if !domain.Permission(c.Notifications.Permission).Valid() {
		errs = append(errs, fmt.Errorf("notifications.permission %q is not a permission state", c.Notifications.Permission))
	}
	if !domain.Permission(c.Notifications.OnRequest).Valid() {
		errs = append(errs, fmt.Errorf("notifications.on_request %q is not a permission state", c.Notifications.OnRequest))
	}
	return errors.Join(errs...)
}

// Location resolves the configured timezone.
func (c StoreConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("store.timezone: %w", err)
	}
	return loc, nil
}

// IntervalDuration parses the reminder interval.
func (c RemindersConfig) IntervalDuration() time.Duration {
	return parseDuration(c.Interval, defaultReminderInterval)
}

// TimeoutDuration parses the AI call timeout.
func (c AIConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, defaultAITimeout)
}

// HealthIntervalDuration parses the health check interval.
func (c TelemetryConfig) HealthIntervalDuration() time.Duration {
	return parseDuration(c.HealthInterval, defaultHealthInterval)
}

// parseDuration returns fallback for empty, invalid or non-positive input.
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// loadDotEnv loads the given .env files that exist. Variables already in
// the environment win.
func loadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("MOMENTUM_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

// momentumHome returns the Momentum data directory.
func momentumHome() string {
	if env := os.Getenv("MOMENTUM_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".momentum")
}

// MomentumHome is exported for use by other packages.
func MomentumHome() string {
	return momentumHome()
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(momentumHome(), "config.toml")
}
