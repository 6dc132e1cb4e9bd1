package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"finman/internal/core"

	"github.com/go-chi/chi/v5"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid object", body: `{"name":"Food"}`},
		{name: "empty body", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"name":`, wantErr: "malformed JSON body"},
		{name: "wrong type", body: `{"name":42}`, wantErr: "malformed JSON body"},
		{name: "two objects", body: `{"name":"a"}{"name":"b"}`, wantErr: "single JSON object"},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst struct {
				Name string `json:"name"`
			}
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Name != "Food" {
					t.Errorf("Name = %q, want Food", dst.Name)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, core.ErrInvalidRequest) {
				t.Errorf("error %v does not wrap ErrInvalidRequest", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathInt64(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "42", want: 42},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.raw)
		got, err := PathInt64(req, "id")
		if tt.wantErr {
			if !errors.Is(err, core.ErrInvalidRequest) {
				t.Errorf("PathInt64(%q) error = %v, want invalid request", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("PathInt64(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
}

func TestPathString(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "name", "Side%20Hustle")
	if got := PathString(req, "name"); got != "Side Hustle" {
		t.Errorf("PathString = %q, want %q", got, "Side Hustle")
	}
}

func TestParseTransactionFilter(t *testing.T) {
	f, err := ParseTransactionFilter(url.Values{
		"startDate": {"2024-01-01"},
		"endDate":   {"2024-01-31"},
		"category":  {" Food "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.From == nil || f.From.String() != "2024-01-01" {
		t.Errorf("From = %v", f.From)
	}
	if f.To == nil || f.To.String() != "2024-01-31" {
		t.Errorf("To = %v", f.To)
	}
	if f.Category != "Food" {
		t.Errorf("Category = %q, want Food", f.Category)
	}

	f, err = ParseTransactionFilter(url.Values{})
	if err != nil || f.From != nil || f.To != nil || f.Category != "" {
		t.Errorf("empty query = %+v, %v; want no filter", f, err)
	}

	if _, err := ParseTransactionFilter(url.Values{"endDate": {"31/01/2024"}}); !errors.Is(err, core.ErrInvalidRequest) {
		t.Errorf("bad date error = %v, want invalid request", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := bearerToken(req); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Food  ", "Food"},
		{"Fo\x00od", "Food"},
		{"line1\nline2", "line1\nline2"},
		{"tab\there", "tab\there"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	if got := clientIP(req); got != "10.0.0.9" {
		t.Errorf("clientIP = %q", got)
	}
	req.Header.Set("X-Real-IP", "10.0.0.8")
	if got := clientIP(req); got != "10.0.0.8" {
		t.Errorf("clientIP with X-Real-IP = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Errorf("clientIP with X-Forwarded-For = %q", got)
	}
}
