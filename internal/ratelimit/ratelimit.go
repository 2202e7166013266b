// Package ratelimit throttles sensitive operations per client using a
// Redis-backed sliding window. When no Redis address is configured the
// limiter is disabled and every check passes.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether a sensitive operation may proceed.
type Limiter interface {
	// Allow reports whether clientID may invoke operation now. A nil
	// error with allow=false means the window is exhausted; a non-nil
	// error means the limiter backend failed (callers decide fail-open
	// vs fail-closed).
	Allow(ctx context.Context, clientID, operation string) (bool, error)
}

// Config sets the window for the Redis limiter.
type Config struct {
	Limit  int           // Max sensitive calls per window. Default: 10
	Window time.Duration // Default: 1m
}

// RedisLimiter implements a sliding-window limiter over a Redis sorted
// set: one member per call, scored by timestamp, trimmed on each check.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewRedisLimiter(client *redis.Client, cfg Config, logger *zap.Logger) *RedisLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client: client,
		limit:  cfg.Limit,
		window: cfg.Window,
		logger: logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID, operation string) (bool, error) {
	key := "ratelimit:" + clientID + ":" + operation
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key,
		"0", strconv.FormatInt(windowStart.UnixNano(), 10))
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit check %s: %w", key, err)
	}

	if count.Val() >= int64(l.limit) {
		l.logger.Warn("rate limit exceeded",
			zap.String("client_id", clientID),
			zap.String("operation", operation),
			zap.Int64("calls_in_window", count.Val()),
		)
		return false, nil
	}

	record := l.client.TxPipeline()
	record.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	record.Expire(ctx, key, l.window)
	if _, err := record.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit record %s: %w", key, err)
	}

	return true, nil
}

// NoopLimiter always allows. Used when rate limiting is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string, string) (bool, error) {
	return true, nil
}
