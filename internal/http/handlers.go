package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finman/internal/core"
	applog "finman/internal/log"
)

var (
	errRouteNotFound    = fmt.Errorf("%w: no such route", core.ErrNotFound)
	errMethodNotAllowed = errors.New("method not allowed")
)

// fail writes the error response for err. Internal errors are logged here
// with their cause; the client only sees a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errMethodNotAllowed) {
		NewJSONResponse().Status(http.StatusMethodNotAllowed).Body(ErrorResponse{
			Status:    http.StatusMethodNotAllowed,
			Error:     "Method Not Allowed",
			Message:   err.Error(),
			Path:      r.URL.Path,
			Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		}).Write(w)
		return
	}
	if core.KindOf(err) == core.KindInternal {
		fields := applog.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
			WithError(err)
		if user, ok := UserFromContext(r.Context()); ok {
			fields = fields.WithUser(int64(user))
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	}
	ErrorFor(r, err, s.now()).Write(w)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, clientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	NewJSONResponse().Status(http.StatusTooManyRequests).Body(ErrorResponse{
		Status:    http.StatusTooManyRequests,
		Error:     "Too Many Requests",
		Message:   "Rate limit exceeded. Please try again later.",
		Path:      r.URL.Path,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}).Write(w)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"application": "Personal Finance Manager API",
		"status":      "running",
		"documentation": map[string]string{
			"auth":         "/api/auth/register, /api/auth/login, /api/auth/logout",
			"transactions": "/api/transactions",
			"categories":   "/api/categories",
			"goals":        "/api/goals",
			"reports":      "/api/reports/monthly/{year}/{month}, /api/reports/yearly/{year}",
		},
	}).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}).Write(w)
}

// handleReady reports whether the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.svc.Store == nil {
		NewJSONResponse().Status(http.StatusServiceUnavailable).
			Body(map[string]string{"status": "not_ready", "store": "not_configured"}).Write(w)
		return
	}
	if err := s.svc.Store.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		NewJSONResponse().Status(http.StatusServiceUnavailable).
			Body(map[string]string{"status": "not_ready", "store": "unreachable"}).Write(w)
		return
	}
	OK(map[string]string{"status": "ready", "store": "ok"}).Write(w)
}
