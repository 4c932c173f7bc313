package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/momentum-app/momentum/internal/domain"
)

// ─── Tasks (/api/tasks) ─────────────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.store.Tasks()

	if q := domain.Quadrant(r.URL.Query().Get("quadrant")); q != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Quadrant == q {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.store.Task(chi.URLParam(r, "id"))
	if !ok {
		writeDomainError(w, domain.ErrTaskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTask
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := domain.ValidateNewTask(req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.store.AddTask(req))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.TaskUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateUpdate(req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.UpdateTask(id, req); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeTask(w, id)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.ToggleTask(id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeTask(w, id)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func (s *Server) handleReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	if err := s.store.ReorderTasks(*req.From, *req.To); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": s.store.Tasks(),
	})
}

// ─── Subtasks ───────────────────────────────────────────────────────────────

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	subs, err := s.planner.Breakdown(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if subs == nil {
		subs = []domain.SubTask{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sub_tasks": subs,
	})
}

func (s *Server) handleToggleSubTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.ToggleSubTask(id, chi.URLParam(r, "subID")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeTask(w, id)
}

// writeTask writes the current state of a task, or 404 if it has gone.
func (s *Server) writeTask(w http.ResponseWriter, id string) {
	task, ok := s.store.Task(id)
	if !ok {
		writeDomainError(w, domain.ErrTaskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// validateUpdate checks the fields a client may set to bad values.
func validateUpdate(u domain.TaskUpdate) error {
	if p, ok := u.Priority.Get(); ok && (p < domain.MinPriority || p > domain.MaxPriority) {
		return fmt.Errorf("%w: priority must be %d-%d, got %d", domain.ErrInvalidTask, domain.MinPriority, domain.MaxPriority, p)
	}
	if c, ok := u.Category.Get(); ok && !c.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidTask, c)
	}
	if d, ok := u.Duration.Get(); ok && d <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", domain.ErrInvalidTask, d)
	}
	if subs, ok := u.SubTasks.Get(); ok && len(subs) > domain.MaxSubTasks {
		return fmt.Errorf("%w: at most %d subtasks", domain.ErrInvalidTask, domain.MaxSubTasks)
	}
	return nil
}
