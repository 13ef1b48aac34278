package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel/internal/render"
)

// RateLimiter is a sliding-window request counter keyed by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
	go rl.cleanupLoop()
	return rl
}

// Allow records a request from key. When the limit is hit it returns false
// and how long until the oldest request leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	recent := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.requests[key] = recent
		return false, recent[0].Sub(cutoff)
	}

	rl.requests[key] = append(recent, now)
	return true, 0
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, times := range rl.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RateLimit returns per-route middleware backed by limiter.
func RateLimit(limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, retryAfter := limiter.Allow(ip)
			if !ok {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				render.Error(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}
			next(w, r)
		}
	}
}

// RateLimitAuth allows 10 auth attempts per 15 minutes per IP.
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(NewRateLimiter(10, 15*time.Minute))
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
