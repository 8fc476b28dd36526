package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"printerp/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

type rateBucket struct {
	count int
	reset time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	clients map[string]*rateBucket
	now     func() time.Time
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExpensiveOperationRateLimit applies a tighter per-actor budget to bulk
// runs, which fan out over the whole employee directory.
func ExpensiveOperationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	limit := max(baseLimit/6, 1)
	byActor := newRateLimiter(limit, window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expensiveOperation(r) && !byActor.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if len(parts) > 0 {
			value := strings.TrimSpace(parts[0])
			if value != "" {
				return value
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func newRateLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		clients: map[string]*rateBucket{},
		now:     time.Now,
	}
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	now := rl.now()

	rl.mu.Lock()
	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{count: 0, reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++
	remaining := rl.limit - bucket.count
	resetIn := durationSeconds(bucket.reset.Sub(now))
	overLimit := bucket.count > rl.limit
	rl.mu.Unlock()

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

	if overLimit {
		w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
		slog.Warn("rate limit exceeded",
			"key", key,
			"path", r.URL.Path,
			"method", r.Method,
			"limit", rl.limit,
			"windowSec", int(rl.window.Seconds()),
		)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}

	return true
}

func durationSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	seconds := int(d.Seconds())
	if seconds <= 0 {
		return 1
	}
	return seconds
}

func expensiveOperation(r *http.Request) bool {
	if r == nil || r.Method != http.MethodPost {
		return false
	}
	switch normalizedAPIPath(r.URL.Path) {
	case "/commissions/bulk":
		return true
	}
	return false
}

func normalizedAPIPath(path string) string {
	cleaned := strings.TrimSpace(path)
	cleaned = strings.TrimPrefix(cleaned, "/api/v1")
	cleaned = strings.TrimSuffix(cleaned, "/")
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		return "/" + cleaned
	}
	return cleaned
}
