// Package redislimiter is a Redis-backed sliding-window limiter shared by
// every replica of the service.
package redislimiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/open-rails/coffeeshop/ratelimit"
	"github.com/redis/go-redis/v9"
)

// Limiter keeps one ZSET per (bucket, key) scored by request time.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limits ratelimit.Limits
}

func New(rdb *redis.Client, prefix string, limits ratelimit.Limits) *Limiter {
	if prefix == "" {
		prefix = "coffeeshop:rl:"
	}
	return &Limiter{rdb: rdb, prefix: prefix, limits: limits}
}

// Allow records one request and reports whether it fits the window.
func (l *Limiter) Allow(ctx context.Context, bucket, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	lim := l.limits.For(bucket)
	now := time.Now().UnixMilli()
	start := now - lim.Window.Milliseconds()
	limitKey := l.prefix + bucket + ":" + key
	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, limitKey, "0", strconv.FormatInt(start, 10))
	pipe.ZAdd(ctx, limitKey, redis.Z{Score: float64(now), Member: member})
	countCmd := pipe.ZCard(ctx, limitKey)
	pipe.Expire(ctx, limitKey, lim.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if countCmd.Val() > int64(lim.Limit) {
		l.rdb.ZRem(ctx, limitKey, member)
		return false, nil
	}
	return true, nil
}
