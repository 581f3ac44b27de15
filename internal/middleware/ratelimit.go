package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Marketplace frontends poll bay availability, so the default window
// allows a polling burst while still capping a single client's rate
// against the booking endpoints.
const (
	DefaultRateLimit  = 100
	DefaultRateWindow = time.Minute
)

// InMemoryRateLimiter keeps a sliding window of request timestamps per
// client key. State is per process, so the limit applies per instance.
type InMemoryRateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	l := &InMemoryRateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go l.evictStale()
	return l
}

// Allow records a request for key and reports whether it fits the window.
func (l *InMemoryRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	live := l.trim(key, now)
	if len(live) >= l.limit {
		l.seen[key] = live
		return false
	}
	l.seen[key] = append(live, now)
	return true
}

// trim drops timestamps older than the window. Caller holds mu.
func (l *InMemoryRateLimiter) trim(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	var live []time.Time
	for _, ts := range l.seen[key] {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	return live
}

func (l *InMemoryRateLimiter) evictStale() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for key := range l.seen {
			if live := l.trim(key, now); len(live) == 0 {
				delete(l.seen, key)
			} else {
				l.seen[key] = live
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit limits by client IP and advises the window length on rejection.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
