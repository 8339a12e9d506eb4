package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	goals := s.finance.Repository(user).Goals()
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// handleUpsertGoals creates or replaces the goals for the request's year.
// One goals record per year: a second upsert for the same year overwrites
// the first.
func (s *Server) handleUpsertGoals(w http.ResponseWriter, r *http.Request) {
	var goals core.AnnualGoals
	if err := decodeJSON(r, &goals); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	stored, err := s.finance.UpsertGoals(r.Context(), user, goals)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries(user)
	writeJSON(w, http.StatusOK, stored)
}
