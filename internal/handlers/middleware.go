package handlers

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tendant/simple-ocr/internal/metrics"
	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

// RateLimiter enforces a per-client requests-per-minute bound, keyed by
// remote host. Rejected requests get the standard 429 JSON body.
type RateLimiter struct {
	mu        sync.Mutex
	perMinute int
	limit     rate.Limit
	clients   map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client
// with a matching burst.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		clients:   make(map[string]*clientLimiter),
	}
}

// Wrap applies the rate limit in front of next.
func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			metrics.RateLimited.Inc()
			writeJSON(w, r.URL.Path, http.StatusTooManyRequests, ocrapi.ErrorResponse{
				Success:    false,
				Error:      fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", rl.perMinute),
				StatusCode: http.StatusTooManyRequests,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= 1024 {
			rl.prune()
		}
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.perMinute)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// prune drops clients idle for over ten minutes. Caller holds the lock.
func (rl *RateLimiter) prune() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
