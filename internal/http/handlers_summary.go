package http

import (
	"net/http"
	"strings"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	key := monthCacheKey(string(user), month)
	if data, ok := s.monthCache.Get(key); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	data := aggregate.MonthlyData(s.finance.Repository(user).Transactions(), month)
	s.monthCache.Set(key, data)
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleYearSummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	key := yearCacheKey(string(user), year)
	if data, ok := s.yearCache.Get(key); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	data := aggregate.AnnualData(s.finance.Repository(user).Transactions(), year)
	s.yearCache.Set(key, data)
	writeJSON(w, http.StatusOK, data)
}

// handleBreakdown returns exactly twelve entries per year, zero-valued for
// months without transactions.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	txs := s.finance.Repository(currentUser(r)).Transactions()
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": aggregate.MonthlyBreakdown(txs, year),
	})
}

// handleProgress computes goal progress for a year, or for one month of it
// when ?month= is present. Without goals for the year there is no progress
// to report at all, which is a 404, distinct from a zero-progress answer.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := currentUser(r)
	repo := s.finance.Repository(user)

	goals, ok := repo.GoalsForYear(year)
	if !ok {
		writeDomainError(w, r, &core.NotFoundError{Kind: "goals", ID: r.URL.Query().Get("year")})
		return
	}

	if monthParam := strings.TrimSpace(r.URL.Query().Get("month")); monthParam != "" {
		month, err := queryMonth(r)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		data := aggregate.MonthlyData(repo.Transactions(), month)
		progress := aggregate.MonthlyProgress(data, goals)
		writeJSON(w, http.StatusOK, map[string]any{"month": month, "progress": progress})
		return
	}

	data := aggregate.AnnualData(repo.Transactions(), year)
	writeJSON(w, http.StatusOK, map[string]any{"progress": aggregate.AnnualProgress(data, goals)})
}

// handleCategoryBreakdown sums a month's expenses by category, largest
// first.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	txs := s.finance.Repository(currentUser(r)).Transactions()
	writeJSON(w, http.StatusOK, map[string]any{
		"month":      month,
		"categories": aggregate.CategoryBreakdown(txs, month),
	})
}

// handlePeriods lists the months and years that have any data, most recent
// first. Years include goal-only years.
func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	repo := s.finance.Repository(currentUser(r))
	txs := repo.Transactions()

	writeJSON(w, http.StatusOK, map[string]any{
		"months": aggregate.MonthsWithData(txs),
		"years":  aggregate.YearsWithData(txs, repo.Goals()),
	})
}

// handleCategorySuggestions serves the category seed for a transaction type.
func (s *Server) handleCategorySuggestions(w http.ResponseWriter, r *http.Request) {
	txType := core.TransactionType(strings.TrimSpace(r.URL.Query().Get("type")))
	if !txType.IsValid() {
		writeDomainError(w, r, core.NewValidationError("type", "must be income, expense, savings or investment"))
		return
	}

	var names []string
	if s.taxonomy != nil {
		names = s.taxonomy.Categories(txType)
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": txType, "categories": names})
}
