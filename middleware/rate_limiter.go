// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type limitRule struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles requests per client IP. An IP exceeding its limit is
// blocked for blockDuration.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultRule    limitRule
	blockDuration  time.Duration
	endpointLimits map[string]limitRule
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		defaultRule:   limitRule{limit: rate.Every(100 * time.Millisecond), burst: 20}, // 10 requests per second
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]limitRule{
			// Creation endpoints are cheap to abuse
			"/api/indications":          {limit: rate.Every(time.Second), burst: 10},
			"/api/packaged-indications": {limit: rate.Every(5 * time.Second), burst: 3},
			"/api/withdrawals":          {limit: rate.Every(5 * time.Second), burst: 3},
		},
		now: time.Now,
	}
}

// SetLimit overrides the limit of one route path.
func (r *RateLimiter) SetLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = limitRule{limit: limit, burst: burst}
}

// Cleanup drops expired blocks every interval until ctx is done.
func (r *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanupBlockedIPs()
		}
	}
}

func (r *RateLimiter) cleanupBlockedIPs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			// Also remove the limiters to reset their state
			r.resetIP(ip)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			// Probes and the event runtime are not throttled
			if path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/api/triggers/") {
				return next(c)
			}

			ip := c.RealIP()
			key := ip + "|" + c.Path()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return c.JSON(http.StatusTooManyRequests, map[string]string{
						"message":    "IP address blocked due to too many requests",
						"retryAfter": blockUntil.Format(time.RFC3339),
					})
				}
				// Block has expired - remove it and reset the limiters
				delete(r.blockedIPs, ip)
				r.resetIP(ip)
			}

			rule, ok := r.endpointLimits[c.Path()]
			if !ok {
				rule = r.defaultRule
			}
			limiter, exists := r.ips[key]
			if !exists {
				limiter = rate.NewLimiter(rule.limit, rule.burst)
				r.ips[key] = limiter
			}

			if !limiter.AllowN(r.now(), 1) {
				blockUntil := r.now().Add(r.blockDuration)
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"message":    "Too many requests",
					"retryAfter": blockUntil.Format(time.RFC3339),
				})
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

// resetIP removes every limiter of ip. Callers hold r.mu.
func (r *RateLimiter) resetIP(ip string) {
	prefix := ip + "|"
	for key := range r.ips {
		if strings.HasPrefix(key, prefix) {
			delete(r.ips, key)
		}
	}
}
