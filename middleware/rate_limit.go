package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"tourguard/utils"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests  int           // Number of requests allowed
	Window    time.Duration // Time window
	KeyPrefix string
	SkipPaths []string
}

// RateLimitStrategy defines how requests are grouped into buckets
type RateLimitStrategy string

const (
	StrategyIP       RateLimitStrategy = "ip"
	StrategyUserOrIP RateLimitStrategy = "user_or_ip"
)

// LimitStore decides whether one more request fits in the bucket for key.
type LimitStore interface {
	Allow(ctx context.Context, key string, requests int, window time.Duration) (allowed bool, remaining int, err error)
}

// RedisLimitStore is a sliding window log kept in a sorted set per key.
type RedisLimitStore struct {
	client *redis.Client
}

func NewRedisLimitStore(client *redis.Client) *RedisLimitStore {
	return &RedisLimitStore{client: client}
}

func (rs *RedisLimitStore) Allow(ctx context.Context, key string, requests int, window time.Duration) (bool, int, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := rs.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	current := int(count.Val())
	if current >= requests {
		rs.client.ZRem(ctx, key, member)
		return false, 0, nil
	}
	return true, requests - current - 1, nil
}

// MemoryLimitStore keeps one token bucket per key, evicting idle buckets.
type MemoryLimitStore struct {
	buckets *cache.Cache
	mu      sync.Mutex
}

func NewMemoryLimitStore() *MemoryLimitStore {
	return &MemoryLimitStore{buckets: cache.New(10*time.Minute, 5*time.Minute)}
}

func (ms *MemoryLimitStore) Allow(_ context.Context, key string, requests int, window time.Duration) (bool, int, error) {
	ms.mu.Lock()
	limiter, ok := ms.buckets.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)
	}
	ms.buckets.SetDefault(key, limiter)
	ms.mu.Unlock()

	bucket := limiter.(*rate.Limiter)
	allowed := bucket.Allow()
	remaining := int(bucket.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, nil
}

// RateLimiter provides rate limiting functionality
type RateLimiter struct {
	config   RateLimitConfig
	strategy RateLimitStrategy
	store    LimitStore
	logger   logrus.FieldLogger
}

func NewRateLimiter(config RateLimitConfig, strategy RateLimitStrategy, store LimitStore, logger logrus.FieldLogger) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	if config.Requests <= 0 {
		config.Requests = 100
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return &RateLimiter{
		config:   config,
		strategy: strategy,
		store:    store,
		logger:   logger,
	}
}

// Middleware returns the rate limiting middleware. Store failures let the
// request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if shouldSkipPath(c.Request.URL.Path, rl.config.SkipPaths) {
			c.Next()
			return
		}

		key := rl.getKey(c)
		allowed, remaining, err := rl.store.Allow(c.Request.Context(), key, rl.config.Requests, rl.config.Window)
		if err != nil {
			rl.logger.WithError(err).Error("Rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Window", rl.config.Window.String())

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rl.config.Window.Seconds())))
			rl.logger.WithFields(logrus.Fields{
				"key":        key,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(utils.ContextKeyRequestID),
			}).Warn("Rate limit exceeded")
			utils.HandleServiceError(c, utils.NewRateLimitError(
				fmt.Sprintf("Rate limit of %d requests per %s exceeded", rl.config.Requests, rl.config.Window)))
			c.Abort()
			return
		}

		c.Next()
	})
}

func (rl *RateLimiter) getKey(c *gin.Context) string {
	prefix := rl.config.KeyPrefix

	if rl.strategy == StrategyUserOrIP {
		if userID := utils.GetUserID(c); userID != "" {
			return fmt.Sprintf("%s:user:%s", prefix, userID)
		}
	}
	return fmt.Sprintf("%s:ip:%s", prefix, c.ClientIP())
}
