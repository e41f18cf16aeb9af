package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPostJSON_Success_ReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected content type application/json, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"hello":true}` {
			t.Errorf("unexpected request body %q", string(body))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewBearer("tok", discardLogger())
	body, err := c.PostJSON(context.Background(), server.URL, []byte(`{"hello":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected response body %q", string(body))
	}
}

func TestPostJSON_Unauthorized_InvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewBearer("bad", discardLogger())
	_, err := c.PostJSON(context.Background(), server.URL, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindInvalidToken {
		t.Errorf("expected kind %q, got %q", apperr.KindInvalidToken, appErr.Kind)
	}
	if appErr.Message != "Invalid API token: Token expired or invalid" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestPostJSON_TooManyRequests_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewBearer("tok", discardLogger())
	_, err := c.PostJSON(context.Background(), server.URL, []byte(`{}`))

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindRateLimited {
		t.Errorf("expected kind %q, got %q", apperr.KindRateLimited, appErr.Kind)
	}
}

func TestPostJSON_ServerFailure_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewBearer("tok", discardLogger())
	_, err := c.PostJSON(context.Background(), server.URL, []byte(`{}`))

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindServer {
		t.Errorf("expected kind %q, got %q", apperr.KindServer, appErr.Kind)
	}
	if appErr.Message != "Server error: 503" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestDo_BearerAuth_SetsAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("expected bearer header, got %q", got)
		}
	}))
	defer server.Close()

	c := NewBearer("secret-token", discardLogger())
	if _, err := c.Do(context.Background(), http.MethodGet, server.URL, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_BasicAuth_SetsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			t.Error("expected basic auth header")
		}
		if user != "user@fastmail.com" || pass != "app-pass" {
			t.Errorf("unexpected credentials %q / %q", user, pass)
		}
	}))
	defer server.Close()

	c := NewBasic("user@fastmail.com", "app-pass", discardLogger())
	if _, err := c.Do(context.Background(), http.MethodGet, server.URL, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_DepthHeader_SentForWebDAVVerbs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PROPFIND" {
			t.Errorf("expected PROPFIND, got %s", r.Method)
		}
		if got := r.Header.Get("Depth"); got != "1" {
			t.Errorf("expected Depth 1, got %q", got)
		}
		w.WriteHeader(http.StatusMultiStatus)
		w.Write([]byte(`<?xml version="1.0"?>`))
	}))
	defer server.Close()

	c := NewBasic("u", "p", discardLogger())
	res, err := c.Do(context.Background(), "PROPFIND", server.URL, Options{
		Body:        []byte(`<d:propfind/>`),
		ContentType: "application/xml",
		Depth:       "1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusMultiStatus {
		t.Errorf("expected 207, got %d", res.StatusCode)
	}
}

func TestDo_NotFound_ReturnsResultWithoutError(t *testing.T) {
	// Do reports every completed status; mapping is the caller's choice.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewBearer("tok", discardLogger())
	res, err := c.Do(context.Background(), http.MethodGet, server.URL, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", res.StatusCode)
	}
}

func TestMapStatus_Categories(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   apperr.Kind
	}{
		{"multi-status passes", 207, ""},
		{"created passes", 201, ""},
		{"unauthorized", 401, apperr.KindInvalidToken},
		{"throttled", 429, apperr.KindRateLimited},
		{"bad gateway", 502, apperr.KindServer},
		{"unexpected redirect", 302, apperr.KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapStatus(&Result{StatusCode: tt.status}, "detail")
			if tt.kind == "" {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperr.Error, got %T", err)
			}
			if appErr.Kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, appErr.Kind)
			}
		})
	}
}
