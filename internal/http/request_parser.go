// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON bodies, path parameters and the transaction list filter.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finman/internal/core"
	"finman/internal/services"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies; every payload of this API is tiny.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst. Every failure wraps
// core.ErrInvalidRequest.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", core.ErrInvalidRequest)
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body too large", core.ErrInvalidRequest)
		default:
			return fmt.Errorf("%w: malformed JSON body", core.ErrInvalidRequest)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", core.ErrInvalidRequest)
	}
	return nil
}

// PathInt64 parses a positive integer path parameter.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrInvalidRequest, name, raw)
	}
	return id, nil
}

// PathInt parses an integer path parameter such as a year or a month.
func PathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrInvalidRequest, name, raw)
	}
	return n, nil
}

// PathString returns a path parameter with any remaining escapes decoded.
func PathString(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	return sanitizeInput(raw)
}

// ParseTransactionFilter reads startDate, endDate and category from the query.
// Absent parameters do not filter.
func ParseTransactionFilter(q url.Values) (services.TransactionFilter, error) {
	var f services.TransactionFilter
	var err error
	if f.From, err = core.ParseOptionalDate(q.Get("startDate")); err != nil {
		return services.TransactionFilter{}, err
	}
	if f.To, err = core.ParseOptionalDate(q.Get("endDate")); err != nil {
		return services.TransactionFilter{}, err
	}
	f.Category = sanitizeInput(q.Get("category"))
	return f, nil
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// optionalString sanitizes a patch field, keeping nil as "not provided".
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}
