package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// currentUser is always present behind protect; the fallback guards direct
// handler tests.
func currentUser(r *http.Request) auth.UserID {
	if user, ok := auth.FromContext(r.Context()); ok {
		return user
	}
	return "local"
}

// invalidateSummaries drops the user's cached aggregates after a mutation.
func (s *Server) invalidateSummaries(user auth.UserID) {
	s.InvalidateUser(user)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	txs := s.finance.Repository(user).Transactions()

	if month := r.URL.Query().Get("month"); month != "" {
		filtered := make([]core.Transaction, 0, len(txs))
		for _, tx := range txs {
			if tx.Date.MonthKey() == month {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var draft core.TransactionDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	tx, err := s.finance.AddTransaction(r.Context(), user, sanitizeDraft(draft))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries(user)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	tx, err := s.finance.Repository(currentUser(r)).Transaction(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var patch core.TransactionPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	tx, err := s.finance.UpdateTransaction(r.Context(), user, id, sanitizePatch(patch))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries(user)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	if err := s.finance.DeleteTransaction(r.Context(), user, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries(user)
	w.WriteHeader(http.StatusNoContent)
}
