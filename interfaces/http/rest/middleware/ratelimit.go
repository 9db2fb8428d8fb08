package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// StatusWriter reports a rejected request. *errors.ErrorHandler satisfies it.
type StatusWriter interface {
	HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string)
}

// RateLimiter is a sliding window limiter keyed by client address
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter allows limit requests per window and client. Idle clients
// are forgotten by a sweep that runs until ctx is cancelled.
func NewRateLimiter(ctx context.Context, limit int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	go l.cleanup(ctx)
	return l
}

// Allow records a request for key and reports whether it fits in the window
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	start := now.Add(-l.window)

	requests := l.windows[key]
	kept := requests[:0]
	for _, t := range requests {
		if t.After(start) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return false
	}
	l.windows[key] = append(kept, now)
	return true
}

func (l *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			start := l.now().Add(-l.window)
			for key, requests := range l.windows {
				if len(requests) == 0 || !requests[len(requests)-1].After(start) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RateLimit rejects clients over their budget with 429. It relies on
// RealIP having run first.
func RateLimit(limiter *RateLimiter, errors StatusWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
				errors.HandleStatus(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
