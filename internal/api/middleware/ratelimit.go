package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// UserRateLimiter applies token-bucket limiting keyed by authenticated user
// id, falling back to client IP for anonymous routes. It is constructed once
// and injected into the router, not kept as package state, so tests and
// multiple servers can each carry their own.
type UserRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     float64
	burst   int
}

// NewUserRateLimiter builds a limiter and starts a background sweep that
// drops buckets idle for more than ten minutes.
func NewUserRateLimiter(rps float64, burst int) *UserRateLimiter {
	l := &UserRateLimiter{
		entries: map[string]*limiterEntry{},
		rps:     rps,
		burst:   burst,
	}
	go l.sweep()
	return l
}

func (l *UserRateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		l.mu.Lock()
		for k, v := range l.entries {
			if time.Since(v.last) > 10*time.Minute {
				delete(l.entries, k)
			}
		}
		l.mu.Unlock()
	}
}

// Allow reports whether the keyed bucket has a token available.
func (l *UserRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.entries[key] = e
	}
	e.last = time.Now()
	return e.limiter.Allow()
}

func clientKey(r *http.Request) string {
	if uid := GetUserID(r.Context()); uid != "" {
		return "user:" + uid
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return "ip:" + ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimit rejects requests whose bucket is exhausted with 429.
func RateLimit(l *UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientKey(r)) {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
