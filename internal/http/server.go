// Package http exposes the JSON API: transaction CRUD, goal upserts, and the
// derived summary views. Summaries are cached per user and invalidated on
// every mutation.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/taxonomy"
)

type Server struct {
	http.Server
	finance     *services.FinanceService
	provider    auth.Provider
	taxonomy    *taxonomy.Taxonomy
	rateLimiter *rateLimiter

	monthCache    *cache.LRUCache[core.MonthlyData]
	yearCache     *cache.LRUCache[core.AnnualData]
	cacheManager  *cache.Manager
	shutdownOnce  sync.Once
}

// Options tunes the summary caches.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func DefaultOptions() Options {
	return Options{CacheSize: 256, CacheTTL: 5 * time.Minute}
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Taxonomy may be nil when no category seed file is configured.
func NewServer(addr string, finance *services.FinanceService, provider auth.Provider, tax *taxonomy.Taxonomy, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		finance:      finance,
		provider:     provider,
		taxonomy:     tax,
		rateLimiter:  newRateLimiter(),
		monthCache:   cache.NewLRUCache[core.MonthlyData](opts.CacheSize, opts.CacheTTL),
		yearCache:    cache.NewLRUCache[core.AnnualData](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.monthCache)
	s.cacheManager.Register(s.yearCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /transactions", s.protect(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.protect(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/{id}", s.protect(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.protect(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.protect(s.handleDeleteTransaction))

	mux.HandleFunc("GET /goals", s.protect(s.handleListGoals))
	mux.HandleFunc("PUT /goals", s.protect(s.handleUpsertGoals))

	mux.HandleFunc("GET /summary/month", s.protect(s.handleMonthSummary))
	mux.HandleFunc("GET /summary/year", s.protect(s.handleYearSummary))
	mux.HandleFunc("GET /summary/breakdown", s.protect(s.handleBreakdown))
	mux.HandleFunc("GET /summary/progress", s.protect(s.handleProgress))
	mux.HandleFunc("GET /summary/categories", s.protect(s.handleCategoryBreakdown))

	mux.HandleFunc("GET /periods", s.protect(s.handlePeriods))
	mux.HandleFunc("GET /categories", s.protect(s.handleCategorySuggestions))

	return s
}

// InvalidateUser drops the user's cached summaries, called after any
// externally applied change (remote reloads).
func (s *Server) InvalidateUser(user auth.UserID) {
	prefix := string(user) + ":"
	s.monthCache.DeletePrefix(prefix)
	s.yearCache.DeletePrefix(prefix)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// protect wraps a handler with request logging, security headers, rate
// limiting, and bearer-token auth. The resolved user lands in the request
// context.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		user, ok := s.authenticate(r)
		if !ok {
			slog.WarnContext(ctx, "Unauthorized request", "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		r = r.WithContext(auth.WithUser(r.Context(), user))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"user", user)
	}
}

// authenticate resolves the request's user. Without a configured provider
// every request maps to a single local user.
func (s *Server) authenticate(r *http.Request) (auth.UserID, bool) {
	if s.provider == nil {
		return "local", true
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	return s.provider.Authenticate(strings.TrimSpace(token))
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
