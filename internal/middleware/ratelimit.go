package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware implements a fixed-window limiter per client IP backed
// by Redis. Requests are let through when Redis is unavailable.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIP(r)
			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			// Set expiry on first request
			if count == 1 {
				redisClient.Expire(ctx, key, config.Window)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))

			if count > int64(config.RequestsPerWindow) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_ip", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			remaining := config.RequestsPerWindow - int(count)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
