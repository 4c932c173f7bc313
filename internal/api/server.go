// Package api provides the HTTP server for Momentum.
// It exposes the store, the AI planner, achievements and the notification
// inbox as a JSON REST API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/momentum-app/momentum/internal/app/momentum"
	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/health"
	"github.com/momentum-app/momentum/internal/infra/metrics"
	"github.com/momentum-app/momentum/internal/logging"
)

// Inbox lists and acknowledges stored notifications.
type Inbox interface {
	Pending(limit int) ([]domain.Notification, error)
	History(limit int) ([]domain.Notification, error)
	MarkShown(id int64) error
}

// PermissionGate exposes the notification permission state.
type PermissionGate interface {
	Permission() domain.Permission
	SetPermission(p domain.Permission) error
}

// Ledger lists XP awards.
type Ledger interface {
	ListXPEvents(limit int) ([]domain.XPEvent, error)
}

// Achievements lists the achievement catalog with unlock state.
type Achievements interface {
	List() ([]domain.Achievement, error)
}

// HealthReporter reports the latest health check results.
type HealthReporter interface {
	Statuses() []health.Status
	IsHealthy() bool
}

// Server is the Momentum HTTP API server.
type Server struct {
	store          *momentum.Store
	planner        *momentum.Planner
	inbox          Inbox
	gate           PermissionGate
	ledger         Ledger
	achievements   Achievements
	health         HealthReporter
	corsOrigins    []string
	listLimit      int
	metricsEnabled bool
	log            *slog.Logger
}

// NewServer creates a new API server.
func NewServer(store *momentum.Store, planner *momentum.Planner) *Server {
	if planner == nil {
		planner = momentum.NewPlanner(store, nil, nil)
	}
	return &Server{
		store:       store,
		planner:     planner,
		corsOrigins: []string{"*"},
		listLimit:   50,
		log:         logging.Discard(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetNotifications sets the notification inbox and permission gate.
func (s *Server) SetNotifications(inbox Inbox, gate PermissionGate) {
	s.inbox, s.gate = inbox, gate
}

// SetLedger sets the XP ledger.
func (s *Server) SetLedger(l Ledger) { s.ledger = l }

// SetAchievements sets the achievement catalog.
func (s *Server) SetAchievements(a Achievements) { s.achievements = a }

// SetHealth sets the health reporter behind /health.
func (s *Server) SetHealth(h HealthReporter) { s.health = h }

// SetCORSOrigins sets the allowed CORS origins.
func (s *Server) SetCORSOrigins(origins []string) {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
}

// SetListLimit caps list endpoints that read from the inbox or ledger.
func (s *Server) SetListLimit(n int) {
	if n > 0 {
		s.listLimit = n
	}
}

// SetLogger sets the request logger.
func (s *Server) SetLogger(l *slog.Logger) { s.log = l }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(s.observe)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleAddTask)
			r.Post("/reorder", s.handleReorderTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTask)
				r.Patch("/", s.handleUpdateTask)
				r.Delete("/", s.handleDeleteTask)
				r.Post("/toggle", s.handleToggleTask)
				r.Post("/breakdown", s.handleBreakdown)
				r.Post("/subtasks/{subID}/toggle", s.handleToggleSubTask)
			})
		})

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.handleListHabits)
			r.Post("/", s.handleAddHabit)
			r.Post("/{id}/toggle", s.handleToggleHabit)
		})

		r.Get("/stats", s.handleStats)
		r.Put("/energy", s.handleSetEnergy)
		r.Get("/review", s.handleReview)
		r.Get("/xp/history", s.handleXPHistory)
		r.Get("/achievements", s.handleAchievements)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleNotifications)
			r.Post("/{id}/shown", s.handleNotificationShown)
			r.Get("/permission", s.handleGetPermission)
			r.Put("/permission", s.handleSetPermission)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errorType(status),
		},
	})
}

// writeDomainError maps a domain error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrSubTaskNotFound),
		errors.Is(err, domain.ErrHabitNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrInvalidTask),
		errors.Is(err, domain.ErrInvalidEnergyLevel),
		errors.Is(err, domain.ErrInvalidPermission):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAIUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorType(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= 500:
		return "internal_error"
	default:
		return "invalid_request"
	}
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// queryLimit reads ?limit=, bounded by the server's list limit.
func (s *Server) queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > s.listLimit {
		return s.listLimit
	}
	return n
}

// observe records request metrics by route pattern and logs the request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		s.log.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// cors adds CORS headers for browser clients.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
