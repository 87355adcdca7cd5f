package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveFrom(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimitMiddleware_NonAPIPaths(t *testing.T) {
	rl := newRateLimiter(rate.Limit(1), 1) // very restrictive
	handler := rateLimitMiddleware(rl)(okHandler())

	for i := range 10 {
		if rr := serveFrom(handler, "/index.html", "1.2.3.4:5678"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rr.Code)
		}
	}
}

func TestRateLimitMiddleware_APIPathThrottled(t *testing.T) {
	rl := newRateLimiter(rate.Limit(1), 2) // 1 req/s, burst 2
	handler := rateLimitMiddleware(rl)(okHandler())

	for i := range 2 {
		if rr := serveFrom(handler, "/api/positions", "10.0.0.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rr.Code)
		}
	}

	rr := serveFrom(handler, "/api/positions", "10.0.0.1:1234")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if !strings.Contains(rr.Body.String(), "too many requests") {
		t.Errorf("body = %q, want rate limit message", rr.Body.String())
	}

	// A different IP has its own budget.
	if rr := serveFrom(handler, "/api/positions", "10.0.0.2:1234"); rr.Code != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", rr.Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(rate.Limit(10), 10)
	rl.getLimiter("1.1.1.1")
	rl.getLimiter("2.2.2.2")
	if n := rl.size(); n != 2 {
		t.Fatalf("size() = %d, want 2", n)
	}

	rl.cleanup(time.Hour)
	if n := rl.size(); n != 2 {
		t.Fatalf("size() = %d after fresh cleanup, want 2", n)
	}

	time.Sleep(5 * time.Millisecond)
	rl.cleanup(time.Millisecond)
	if n := rl.size(); n != 0 {
		t.Fatalf("size() = %d after stale cleanup, want 0", n)
	}
}

func TestRateLimiter_StartCleanupStops(t *testing.T) {
	rl := newRateLimiter(rate.Limit(10), 10)
	rl.getLimiter("1.1.1.1")

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	rl.startCleanup(ctx, &wg, time.Millisecond, 0)

	deadline := time.Now().Add(time.Second)
	for rl.size() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("stale entry never evicted")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	wg.Wait()
}

func TestServer_RateLimitConfigured(t *testing.T) {
	env := newTestEnv(t, 10, Config{RateLimit: 1, RateBurst: 1})
	h := env.server.Handler()

	tests := []struct {
		path string
		want int
	}{
		{"/api/status", http.StatusOK},
		{"/api/status", http.StatusTooManyRequests},
		{"/health", http.StatusOK},
	}
	for _, tt := range tests {
		if code := serveFrom(h, tt.path, "9.9.9.9:1").Code; code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, code, tt.want)
		}
	}
}
