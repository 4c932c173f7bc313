package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ─── Habits (/api/habits) ───────────────────────────────────────────────────

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"habits": s.store.Habits(),
		"today":  s.store.Today(),
	})
}

type addHabitRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	var req addHabitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.AddHabit(name))
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	completed, err := s.store.ToggleHabit(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	habit, _ := s.store.Habit(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"completed": completed, // false when already done today
		"habit":     habit,
	})
}
