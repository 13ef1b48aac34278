package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	rl := &RateLimiter{requests: map[string][]time.Time{}, limit: 2, window: time.Minute, now: func() time.Time { return now }}

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d rejected", i)
		}
	}
	ok, retry := rl.Allow("1.2.3.4")
	if ok || retry <= 0 || retry > time.Minute {
		t.Fatalf("third request: ok=%v retry=%v", ok, retry)
	}
	if ok, _ := rl.Allow("5.6.7.8"); !ok {
		t.Fatal("other IP limited")
	}

	now = now.Add(61 * time.Second)
	if ok, _ := rl.Allow("1.2.3.4"); !ok {
		t.Fatal("window did not slide")
	}

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	if len(rl.requests) != 0 {
		t.Fatalf("cleanup left %d keys", len(rl.requests))
	}
}

func TestRateLimitResponds429(t *testing.T) {
	rl := &RateLimiter{requests: map[string][]time.Time{}, limit: 1, window: time.Minute, now: time.Now}
	h := RateLimit(rl)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status %d, want %d", i, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After")
		}
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "handler" {
		t.Fatalf("order = %v", order)
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	called := false
	h := RequireAuth(func(http.ResponseWriter, *http.Request) { called = true })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("status %d called=%v", rec.Code, called)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), RequestID, RequestLogging)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("no request ID generated")
	}
}
