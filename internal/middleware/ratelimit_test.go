package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	defer rl.Stop()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !rl.allow("test-ip", now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("test-ip", now) {
		t.Error("4th request should be rate-limited")
	}
	if !rl.allow("other-ip", now) {
		t.Error("different IP should be allowed")
	}
	if !rl.allow("test-ip", now.Add(1100*time.Millisecond)) {
		t.Error("a token should refill after a second")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	now := time.Now()

	rl.allow("old", now.Add(-2*idleAfter))
	rl.allow("fresh", now)
	rl.cleanup(now)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["old"]; ok {
		t.Error("idle client should be removed")
	}
	if _, ok := rl.clients["fresh"]; !ok {
		t.Error("active client should be kept")
	}
}

func TestRateLimiterMutationsOnly(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	handler := rl.Mutations(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/template-block-contents", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	if rr := send(http.MethodPatch); rr.Code != http.StatusNoContent {
		t.Fatalf("first PATCH: got %d", rr.Code)
	}
	rr := send(http.MethodPatch)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second PATCH: got %d, want 429", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error"`) {
		t.Errorf("body should be a JSON error, got %q", rr.Body.String())
	}
	for i := 0; i < 5; i++ {
		if rr := send(http.MethodGet); rr.Code != http.StatusNoContent {
			t.Fatalf("GET %d should not be limited, got %d", i, rr.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.1:80", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.9:1234", "192.0.2.9"},
		{"ipv6 remote", nil, "[2001:db8::1]:443", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
