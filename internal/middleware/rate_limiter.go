package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bannedIPsKey = "banned_ips"

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	Prefix      string        // Key namespace, so separate route groups get separate budgets
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Fixed window length
	BlockTime   time.Duration // How long to block after exceeding limit; 0 waits out the window
}

// RateLimiter provides IP-based rate limiting using Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	if config.Prefix == "" {
		config.Prefix = "default"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		if banned, _ := rl.IsIPBanned(ctx, clientIP); banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Your IP address has been banned",
			})
			return
		}

		allowed, retryAfter, err := rl.CheckLimit(ctx, clientIP)
		if err != nil {
			// Fail open: Redis trouble must not lock everyone out.
			logger.Log.Warn("Rate limiter unavailable, allowing request",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			logger.Log.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Int("retry_after", seconds),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) counterKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s:%s", rl.config.Prefix, ip)
}

func (rl *RateLimiter) blockKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s:block:%s", rl.config.Prefix, ip)
}

// CheckLimit counts one request from ip against a fixed window.
// Returns: (allowed bool, retryAfter duration, error)
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	if rl.config.BlockTime > 0 {
		ttl, err := rl.redis.TTL(ctx, rl.blockKey(ip)).Result()
		if err != nil {
			return false, 0, err
		}
		if ttl > 0 {
			return false, ttl, nil
		}
	}

	key := rl.counterKey(ip)
	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	// Start the window on the first request
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count <= int64(rl.config.MaxRequests) {
		return true, 0, nil
	}

	if rl.config.BlockTime > 0 {
		if err := rl.redis.Set(ctx, rl.blockKey(ip), 1, rl.config.BlockTime).Err(); err != nil {
			return false, 0, err
		}
		return false, rl.config.BlockTime, nil
	}

	ttl, err := rl.redis.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.config.Window
	}
	return false, ttl, nil
}

func (rl *RateLimiter) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	return rl.redis.SIsMember(ctx, bannedIPsKey, ip).Result()
}

func (rl *RateLimiter) BanIP(ctx context.Context, ip string) error {
	return rl.redis.SAdd(ctx, bannedIPsKey, ip).Err()
}

func (rl *RateLimiter) UnbanIP(ctx context.Context, ip string) error {
	return rl.redis.SRem(ctx, bannedIPsKey, ip).Err()
}

// BannedIPs lists every banned address.
func (rl *RateLimiter) BannedIPs(ctx context.Context) ([]string, error) {
	return rl.redis.SMembers(ctx, bannedIPsKey).Result()
}
