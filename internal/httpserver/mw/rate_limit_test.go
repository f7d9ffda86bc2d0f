package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:          2,
		RefillInterval: 10 * time.Second,
		Now:            func() time.Time { return now },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := range 2 {
		if rec := call("192.0.2.1:1000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := call("192.0.2.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over budget status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "10" {
		t.Errorf("Retry-After = %q, want 10", got)
	}

	// Buckets are per client.
	if rec := call("192.0.2.2:1000"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}

	now = now.Add(10 * time.Second)
	if rec := call("192.0.2.1:1000"); rec.Code != http.StatusOK {
		t.Errorf("after refill status = %d, want 200", rec.Code)
	}
}
