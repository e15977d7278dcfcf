package middleware

import (
	"alertrelay/utils"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis        *redis.Client // nil selects the in-process store
	Requests     int           // Number of requests allowed, 0 disables limiting
	Window       time.Duration // Time window
	KeyPrefix    string        // Key prefix
	SkipPaths    []string      // Paths to skip rate limiting
	ErrorMessage string        // Custom error message
}

type rateLimitBackend interface {
	check(ctx context.Context, key string) (allowed bool, resetTime time.Time, remaining int, err error)
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	config  RateLimitConfig
	backend rateLimitBackend
}

// NewRateLimiter uses the redis sliding window when a client is configured and an
// in-memory fixed window otherwise.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	if config.ErrorMessage == "" {
		config.ErrorMessage = "Rate limit exceeded"
	}

	rl := &RateLimiter{config: config}
	if config.Redis != nil {
		rl.backend = &redisBackend{client: config.Redis, requests: config.Requests, window: config.Window}
	} else {
		rl.backend = newMemoryBackend(config.Requests, config.Window)
	}
	return rl
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if rl.config.Requests <= 0 || rl.shouldSkipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", rl.config.KeyPrefix, c.ClientIP())

		allowed, resetTime, remaining, err := rl.backend.check(c.Request.Context(), key)
		if err != nil {
			logrus.Errorf("Rate limit check failed: %v", err)
			// Allow request to proceed on error
			c.Next()
			return
		}

		rl.setRateLimitHeaders(c, remaining, resetTime)

		if !allowed {
			rl.handleRateLimitExceeded(c, resetTime)
			return
		}

		c.Next()
	})
}

func (rl *RateLimiter) setRateLimitHeaders(c *gin.Context, remaining int, resetTime time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
	c.Header("X-RateLimit-Window", rl.config.Window.String())
}

func (rl *RateLimiter) handleRateLimitExceeded(c *gin.Context, resetTime time.Time) {
	retryAfter := time.Until(resetTime).Seconds()
	if retryAfter < 0 {
		retryAfter = 0
	}
	c.Header("Retry-After", strconv.Itoa(int(retryAfter)))

	logrus.WithFields(logrus.Fields{
		"client_ip":   c.ClientIP(),
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"retry_after": retryAfter,
	}).Warn("Rate limit exceeded")

	utils.RateLimitResponse(c, rl.config.ErrorMessage)
	c.Abort()
}

func (rl *RateLimiter) shouldSkipPath(path string) bool {
	for _, skipPath := range rl.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// redisBackend is a sliding window log kept in a sorted set per key.
type redisBackend struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func (b *redisBackend) check(ctx context.Context, key string) (allowed bool, resetTime time.Time, remaining int, err error) {
	now := time.Now()
	member := fmt.Sprintf("%d", now.UnixNano())

	pipe := b.client.Pipeline()

	// Remove expired entries
	expiredBefore := now.Add(-b.window).UnixNano()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", expiredBefore))

	// Count current requests
	pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})

	pipe.Expire(ctx, key, b.window+time.Minute)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, time.Time{}, 0, err
	}

	// Count before adding the new request
	currentCount := results[1].(*redis.IntCmd).Val()

	remaining = b.requests - int(currentCount) - 1
	if remaining < 0 {
		remaining = 0
	}
	resetTime = now.Add(b.window)
	allowed = currentCount < int64(b.requests)

	// If not allowed, remove the request we just added
	if !allowed {
		b.client.ZRem(ctx, key, member)
	}

	return allowed, resetTime, remaining, nil
}

type memoryBackend struct {
	limiter *limiter.Limiter
}

func newMemoryBackend(requests int, window time.Duration) *memoryBackend {
	rate := limiter.Rate{Period: window, Limit: int64(requests)}
	return &memoryBackend{limiter: limiter.New(memory.NewStore(), rate)}
}

func (b *memoryBackend) check(ctx context.Context, key string) (bool, time.Time, int, error) {
	lctx, err := b.limiter.Get(ctx, key)
	if err != nil {
		return false, time.Time{}, 0, err
	}
	return !lctx.Reached, time.Unix(lctx.Reset, 0), int(lctx.Remaining), nil
}

// IngestRateLimit limits the sensor ingestion and upload endpoints per client IP.
func IngestRateLimit(redisClient *redis.Client, requests int, window time.Duration) gin.HandlerFunc {
	rl := NewRateLimiter(RateLimitConfig{
		Redis:        redisClient,
		Requests:     requests,
		Window:       window,
		KeyPrefix:    "ingest_rate_limit",
		ErrorMessage: "Too many alerts from this client. Please try again later.",
	})
	return rl.Middleware()
}
