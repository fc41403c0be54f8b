// Package memorylimiter is a single-node sliding-window limiter used when
// Redis is not configured.
package memorylimiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/open-rails/coffeeshop/ratelimit"
)

// Limiter keeps request timestamps per (bucket, key) in memory.
type Limiter struct {
	mu      sync.Mutex
	limits  ratelimit.Limits
	buckets map[string][]int64 // unix ms, oldest first
	now     func() time.Time
}

// New constructs an in-memory limiter with the provided per-bucket limits.
func New(limits ratelimit.Limits) *Limiter {
	return &Limiter{limits: limits, buckets: make(map[string][]int64), now: time.Now}
}

// Allow records one request for key in bucket and reports whether it fits
// the window. Denied requests are not recorded.
func (l *Limiter) Allow(_ context.Context, bucket, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	lim := l.limits.For(bucket)
	nowMs := l.now().UnixMilli()
	windowStart := nowMs - lim.Window.Milliseconds()
	limitKey := key + ":" + bucket

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.buckets[limitKey]
	i := 0
	for i < len(ts) && ts[i] <= windowStart {
		i++
	}
	ts = ts[i:]

	if len(ts) >= lim.Limit {
		l.buckets[limitKey] = ts
		return false, nil
	}
	l.buckets[limitKey] = append(ts, nowMs)
	return true, nil
}
