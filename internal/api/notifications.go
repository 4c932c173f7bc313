package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/momentum-app/momentum/internal/domain"
)

// ─── Notifications (/api/notifications) ─────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusServiceUnavailable, "notification inbox is not enabled")
		return
	}

	list := s.inbox.Pending
	if r.URL.Query().Get("all") == "true" {
		list = s.inbox.History
	}
	notifs, err := list(s.queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifs,
	})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusServiceUnavailable, "notification inbox is not enabled")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}
	if err := s.inbox.MarkShown(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type permissionRequest struct {
	Permission domain.Permission `json:"permission"`
}

func (s *Server) handleGetPermission(w http.ResponseWriter, r *http.Request) {
	if s.gate == nil {
		writeJSON(w, http.StatusOK, permissionRequest{Permission: domain.PermissionDenied})
		return
	}
	writeJSON(w, http.StatusOK, permissionRequest{Permission: s.gate.Permission()})
}

func (s *Server) handleSetPermission(w http.ResponseWriter, r *http.Request) {
	if s.gate == nil {
		writeError(w, http.StatusServiceUnavailable, "notifications are not enabled")
		return
	}
	var req permissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.gate.SetPermission(req.Permission); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, permissionRequest{Permission: s.gate.Permission()})
}
