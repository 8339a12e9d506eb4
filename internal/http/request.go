package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const maxBodySize = 1 << 20 // 1 MiB

// decodeJSON reads the request body into v, translating malformed money and
// date values into the core validation error so they map to 422.
func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		if errors.Is(err, io.EOF) {
			return core.NewValidationError("body", "empty request body")
		}
		return core.NewValidationError("body", "malformed JSON")
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, core.NewValidationError("id", "not a valid transaction id")
	}
	return id, nil
}

// queryMonth returns the month key from ?month=YYYY-MM, defaulting to the
// current month. The key is matched against date strings literally, no
// timezone conversion.
func queryMonth(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		now := time.Now()
		return core.MonthKeyOf(now.Year(), int(now.Month())), nil
	}
	if _, err := time.Parse("2006-01", v); err != nil {
		return "", core.NewValidationError("month", "must be formatted YYYY-MM")
	}
	return v, nil
}

// queryYear returns ?year=, defaulting to the current year.
func queryYear(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year <= 0 {
		return 0, core.NewValidationError("year", "must be a positive number")
	}
	return year, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizeDraft(d core.TransactionDraft) core.TransactionDraft {
	d.Description = sanitizeInput(d.Description)
	d.Category = sanitizeInput(d.Category)
	return d
}

func sanitizePatch(p core.TransactionPatch) core.TransactionPatch {
	if p.Description != nil {
		clean := sanitizeInput(*p.Description)
		p.Description = &clean
	}
	if p.Category != nil {
		clean := sanitizeInput(*p.Category)
		p.Category = &clean
	}
	return p
}

// monthCacheKey and yearCacheKey scope cache entries per user so one user's
// invalidation never touches another's.
func monthCacheKey(user, month string) string {
	return fmt.Sprintf("%s:month:%s", user, month)
}

func yearCacheKey(user string, year int) string {
	return fmt.Sprintf("%s:year:%d", user, year)
}
