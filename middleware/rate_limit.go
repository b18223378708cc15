package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"sola-donation-api/utils"
)

// limiterBackend is the slice of the Redis command surface the limiter uses.
type limiterBackend interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type RateLimiter struct {
	client limiterBackend
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
}

var defaultConfigs = map[string]RateLimitConfig{
	"/api/donate": {
		Requests: 5,
		Window:   time.Minute,
		Message:  "Too many donation attempts. Please wait a minute and try again.",
	},
	"/api/auth/login": {
		Requests: 5,
		Window:   15 * time.Minute,
		Message:  "Too many login attempts. Please try again in 15 minutes.",
	},
}

func NewRateLimiter(client limiterBackend) *RateLimiter {
	return &RateLimiter{client: client}
}

// Limit applies a fixed-window counter per client IP and path. Redis being
// down fails open; payments must not be blocked by the limiter's backend.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg, ok := defaultConfigs[r.URL.Path]
		if !ok || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		key := fmt.Sprintf("ratelimit:%s:%s", r.URL.Path, ip)

		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Rate limiter unavailable, allowing request: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.client.Expire(ctx, key, cfg.Window)
		}

		if count > int64(cfg.Requests) {
			log.Printf("Rate limit exceeded for %s on %s (%d requests)", ip, r.URL.Path, count)
			utils.SendErrorResponse(w, http.StatusTooManyRequests, cfg.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
