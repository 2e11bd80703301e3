package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/cache"
	"github.com/eldtechnologies/dispatch/internal/store"
)

func TestRateLimitMiddleware(t *testing.T) {
	limiter := cache.NewRateLimiter(store.NewMemstore(), "rl", zerolog.Nop())
	mw := RateLimit(limiter, 2, time.Minute, zerolog.Nop())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/message", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	w := do()
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "2" {
		t.Fatalf("limit header = %q", w.Header().Get("X-RateLimit-Limit"))
	}
	if w.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Fatalf("remaining header = %q", w.Header().Get("X-RateLimit-Remaining"))
	}
	if w.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("reset header missing")
	}

	do()
	w = do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	limiter := cache.NewRateLimiter(store.NewMemstore(), "rl", zerolog.Nop())
	mw := RateLimit(limiter, 1, time.Minute, zerolog.Nop())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/message", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first client status = %d", code)
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("exhausted client status = %d, want 429", code)
	}
	if code := do("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("second client status = %d, limits must be per IP", code)
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := RealIP(req); got != "192.0.2.1" {
		t.Fatalf("RealIP = %q", got)
	}

	req.Header.Set("X-Real-IP", "203.0.113.9")
	if got := RealIP(req); got != "203.0.113.9" {
		t.Fatalf("RealIP with X-Real-IP = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := RealIP(req); got != "198.51.100.7" {
		t.Fatalf("RealIP with X-Forwarded-For = %q", got)
	}
}
