package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/iss-tracker/internal/version"
)

const testURL = "http://api.open-notify.org/iss-now.json"

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient(testURL)

		if c.url != testURL {
			t.Errorf("url = %q, want %q", c.url, testURL)
		}
		if c.httpClient.Timeout != 3*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 3*time.Second)
		}
		if want := version.UserAgent(); c.userAgent != want {
			t.Errorf("userAgent = %q, want %q", c.userAgent, want)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient(testURL, WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with user agent option", func(t *testing.T) {
		c := NewClient(testURL, WithUserAgent("iss-test/1"))
		if c.userAgent != "iss-test/1" {
			t.Errorf("userAgent = %q, want %q", c.userAgent, "iss-test/1")
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient(testURL, WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := NewClient(testURL, WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

// TestAPIError tests the APIError type.
func TestAPIError(t *testing.T) {
	err := &APIError{
		StatusCode: 503,
		Message:    "Service Unavailable",
		Body:       []byte(`down for maintenance`),
	}
	expected := "upstream api error 503: Service Unavailable"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

// TestDoRequest tests the HTTP request functionality.
func TestDoRequest(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("Method = %q, want %q", r.Method, http.MethodGet)
			}
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q, want %q", r.Header.Get("Accept"), "application/json")
			}
			if r.Header.Get("User-Agent") != "iss-test/1" {
				t.Errorf("User-Agent header = %q, want %q", r.Header.Get("User-Agent"), "iss-test/1")
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"message": "success"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithUserAgent("iss-test/1"))
		body, err := c.doRequest(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"message": "success"}` {
			t.Errorf("body = %q, want %q", string(body), `{"message": "success"}`)
		}
	})

	t.Run("non-200 success status returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.doRequest(context.Background())

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T (%v)", err, err)
		}
		if apiErr.StatusCode != http.StatusNoContent {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusNoContent)
		}
	})

	t.Run("5xx error returns APIError with body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`internal error`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.doRequest(context.Background())

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T (%v)", err, err)
		}
		if apiErr.StatusCode != 500 {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, 500)
		}
		if !strings.Contains(string(apiErr.Body), "internal error") {
			t.Errorf("Body should contain 'internal error', got %q", string(apiErr.Body))
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		c := NewClient(server.URL, WithTimeout(50*time.Millisecond))
		_, err := c.doRequest(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			t.Errorf("timeout should not be an APIError, got %v", err)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := c.doRequest(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error should wrap context.Canceled, got %v", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		c := NewClient(url)
		if _, err := c.doRequest(context.Background()); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
