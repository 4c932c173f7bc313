package api

import (
	"net/http"

	"github.com/momentum-app/momentum/internal/domain"
)

// ─── Dashboard (/api/stats, /api/energy, /api/review, /api/xp, ...) ─────────

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

type energyRequest struct {
	EnergyLevel domain.EnergyLevel `json:"energy_level"`
}

func (s *Server) handleSetEnergy(w http.ResponseWriter, r *http.Request) {
	var req energyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.store.SetEnergyLevel(req.EnergyLevel); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"energy_level": s.store.EnergyLevel(),
	})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	text, err := s.planner.Review(r.Context())
	if err != nil {
		s.log.Warn("daily review failed", "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"review": text,
		"stats":  s.store.Stats(),
	})
}

func (s *Server) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "xp ledger is not enabled")
		return
	}
	events, err := s.ledger.ListXPEvents(s.queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"xp":     s.store.XP(),
		"events": events,
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if s.achievements == nil {
		writeError(w, http.StatusServiceUnavailable, "achievements are not enabled")
		return
	}
	list, err := s.achievements.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": list,
		"unlocked":     unlocked,
		"total":        len(list),
	})
}
