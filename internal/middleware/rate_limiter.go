package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"stallsync/internal/apierror"
)

// ipLimiter is a fixed-window per-IP request counter kept in memory.
type ipLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	counts  map[string]int
	resetAt map[string]time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{
		limit:   limit,
		window:  window,
		counts:  make(map[string]int),
		resetAt: make(map[string]time.Time),
	}
	go l.purgeLoop()
	return l
}

// allow returns false when the IP exceeded its window budget, along with
// the time the window resets.
func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	reset, ok := l.resetAt[ip]
	if !ok || now.After(reset) {
		reset = now.Add(l.window)
		l.resetAt[ip] = reset
		l.counts[ip] = 0
	}
	l.counts[ip]++
	return l.counts[ip] <= l.limit, reset
}

// purgeLoop drops expired IPs so the maps do not grow unbounded under
// scanner traffic.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		purged := 0
		for ip, reset := range l.resetAt {
			if now.After(reset) {
				delete(l.resetAt, ip)
				delete(l.counts, ip)
				purged++
			}
		}
		remaining := len(l.resetAt)
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter purge")
		}
	}
}

// RateLimiter rejects clients exceeding limit requests per window with 429.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	limiter := newIPLimiter(limit, window)
	return func(c *gin.Context) {
		ok, reset := limiter.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", reset.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}
