package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/dentalclinic-backend/api/responses"
	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// WriteLimiter keeps one token bucket per client IP inside this process.
// Buckets idle for longer than the configured TTL are dropped.
type WriteLimiter struct {
	mu        sync.Mutex
	clients   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewWriteLimiter builds a limiter from the write throttle settings.
func NewWriteLimiter(cfg config.WriteRateLimitConfig) *WriteLimiter {
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &WriteLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   rate.Limit(cfg.PerSecond),
		burst:   cfg.Burst,
		idleTTL: idle,
		now:     time.Now,
	}
}

func (l *WriteLimiter) enabled() bool {
	return l != nil && l.limit > 0 && l.burst > 0
}

// Allow reports whether the client identified by key may perform a write now.
func (l *WriteLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, entry := range l.clients {
			if now.Sub(entry.lastSeen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.clients[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *WriteLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// WriteRateLimit throttles mutating requests per client IP. Safe methods pass
// through untouched.
func WriteRateLimit(limiter *WriteLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !limiter.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !limiter.Allow(ip) {
				if logg != nil {
					logCtx := logg.WithFields(r.Context(), map[string]any{
						"ip":     ip,
						"method": r.Method,
						"path":   r.URL.Path,
					})
					logg.Warn(logCtx, "write.rate_limit.blocked")
				}
				responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many write requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
