package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/brk3/habitstats/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "habits_rate_limited_total",
		Help: "Total number of requests rejected by the per-user rate limiter",
	},
	[]string{"user_id"},
)

// userLimiter hands out one token bucket per user. Buckets idle for longer
// than maxIdle are dropped on the next sweep.
type userLimiter struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newUserLimiter(rps float64, burst int) *userLimiter {
	return &userLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		maxIdle: 10 * time.Minute,
		buckets: make(map[string]*bucket),
	}
}

func (l *userLimiter) allow(userID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.maxIdle {
		for id, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.maxIdle {
				delete(l.buckets, id)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[userID]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

func (s *Server) rateLimitMiddleware(l *userLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := userIDFromContext(s.cfg.AuthEnabled, r)
			if !l.allow(userID, time.Now()) {
				rateLimitedTotal.WithLabelValues(userID).Inc()
				logger.Warn("Rate limit exceeded", "user_id", userID, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
