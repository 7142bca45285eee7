package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/metrics"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// RateLimitConfig describes one fixed window.
type RateLimitConfig struct {
	MaxRequests int64
	Window      time.Duration
	KeyPrefix   string
}

// OTPRateLimitConfig guards the OTP endpoints on top of the per-email
// resend cooldown.
func OTPRateLimitConfig(limit int64, window time.Duration) RateLimitConfig {
	return RateLimitConfig{MaxRequests: limit, Window: window, KeyPrefix: "rl:otp"}
}

// LoginRateLimitConfig protects admin login from brute force.
func LoginRateLimitConfig(limit int64, window time.Duration) RateLimitConfig {
	return RateLimitConfig{MaxRequests: limit, Window: window, KeyPrefix: "rl:admin:login"}
}

// RateLimiter is a Redis fixed-window limiter. A nil client disables it.
type RateLimiter struct {
	redisClient redis.UniversalClient
}

func NewRateLimiter(redisClient redis.UniversalClient) *RateLimiter {
	return &RateLimiter{redisClient: redisClient}
}

// Limit counts requests per client IP and route pattern.
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return rl.handler(cfg, func(c *gin.Context) string {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, c.ClientIP(), path)
	})
}

// LimitByIP counts requests per client IP across a route group.
func (rl *RateLimiter) LimitByIP(cfg RateLimitConfig) gin.HandlerFunc {
	return rl.handler(cfg, func(c *gin.Context) string {
		return fmt.Sprintf("%s:%s", cfg.KeyPrefix, c.ClientIP())
	})
}

func (rl *RateLimiter) handler(cfg RateLimitConfig, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.redisClient == nil {
			c.Next()
			return
		}
		key := keyFn(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn(ctx, "rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
				logger.Warn(ctx, "rate limiter failed to set ttl", zap.String("key", key), zap.Error(err))
			}
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		ttl, _ := rl.redisClient.TTL(ctx, key).Result()
		retryAfter := int64(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = int64(cfg.Window.Seconds())
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(cfg.MaxRequests, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(retryAfter, 10))

		if count > cfg.MaxRequests {
			metrics.RateLimitExceeded.WithLabelValues(cfg.KeyPrefix).Inc()
			logger.Warn(ctx, "rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("count", count),
				zap.Int64("limit", cfg.MaxRequests),
			)
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "Trop de requêtes, veuillez réessayer plus tard.",
				"error_type":  "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
