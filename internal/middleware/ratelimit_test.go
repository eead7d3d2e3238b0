package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitKeysByUserID(t *testing.T) {
	handler := RateLimit(2, time.Minute)(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip
		req = req.WithContext(ContextWithUserID(req.Context(), "u1"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	// same user across different IPs shares one window
	for i, ip := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		if rec := send(ip); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := send("10.0.0.3:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}
	if body := rec.Body.String(); !strings.Contains(body, "rate_limited") {
		t.Fatalf("body = %q, want rate_limited error", body)
	}
}

func TestRateLimitIsolatesUsers(t *testing.T) {
	handler := RateLimit(1, time.Minute)(okHandler())

	for _, user := range []string{"u1", "u2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(ContextWithUserID(req.Context(), user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("user %s should have its own window, status = %d", user, rec.Code)
		}
	}
}

func TestRateLimitAnonymousFallsBackToIP(t *testing.T) {
	handler := RateLimit(1, time.Minute)(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}

	// a different anonymous IP is not throttled by the first one's window
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.10:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unrelated IP: status = %d", rec.Code)
	}
}

func TestRateLimitWindowResets(t *testing.T) {
	handler := RateLimit(1, 10*time.Millisecond)(okHandler())

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("first: status = %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second: status = %d, want 429", code)
	}
	time.Sleep(15 * time.Millisecond)
	if code := send(); code != http.StatusOK {
		t.Fatalf("after window: status = %d", code)
	}
}
