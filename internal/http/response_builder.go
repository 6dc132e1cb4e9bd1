// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses and the mapping
// from domain errors onto status codes and the error body.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"finman/internal/core"
	applog "finman/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response body", applog.FieldError, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// MessageResponse is the body of operations that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// OK creates a 200 response carrying v.
func OK(v any) *JSONResponseBuilder {
	return NewJSONResponse().Body(v)
}

// Created creates a 201 response carrying v.
func Created(v any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Body(v)
}

// Message creates a 200 response with a bare message.
func Message(msg string) *JSONResponseBuilder {
	return OK(MessageResponse{Message: msg})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

const internalErrorMessage = "An unexpected error occurred"

// errorStatus maps a domain error kind onto its HTTP status.
func errorStatus(kind core.ErrorKind) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindDuplicateResource:
		return http.StatusConflict
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindInvalidRequest:
		return http.StatusBadRequest
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFor builds the error response for err. Internal errors never leak
// their text to the client.
func ErrorFor(r *http.Request, err error, now time.Time) *JSONResponseBuilder {
	kind := core.KindOf(err)
	status := errorStatus(kind)

	msg := internalErrorMessage
	if kind != core.KindInternal {
		msg = err.Error()
	}

	b := NewJSONResponse().Status(status).Body(ErrorResponse{
		Status:    status,
		Error:     kind.String(),
		Message:   msg,
		Path:      r.URL.Path,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	})
	if kind == core.KindUnauthorized {
		b.Header("WWW-Authenticate", `Bearer realm="finman"`)
	}
	return b
}
