package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sysauth/pkg/logger"
	"github.com/sysauth/pkg/metrics"
	"github.com/sysauth/pkg/response"
	"go.uber.org/zap"
)

// RateLimiter 基于 Redis 的固定窗口限流
type RateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter 创建限流器,limit<=0 时不限流
func NewRateLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow 在当前窗口内记一次并返回是否放行
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl.limit <= 0 {
		return true, nil
	}
	windowStart := time.Now().Truncate(rl.window).Unix()
	redisKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, windowStart)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.limit), nil
}

// Middleware 按客户端IP限流,Redis 不可用时放行
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := rl.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn("限流器不可用,放行请求", zap.Error(err), zap.String("path", c.Path()))
			return c.Next()
		}
		if !ok {
			metrics.LoginThrottledTotal.Inc()
			return response.Error(c, response.CodeTooMany, "请求过于频繁，请稍后重试")
		}
		return c.Next()
	}
}
