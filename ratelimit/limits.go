// Package ratelimit defines the per-route buckets shared by the memory and
// Redis limiters.
package ratelimit

import (
	"context"
	"time"
)

// Bucket names for the protected drink routes.
const (
	BucketDrinksDetail = "drinks_detail"
	BucketDrinksCreate = "drinks_create"
	BucketDrinksUpdate = "drinks_update"
	BucketDrinksDelete = "drinks_delete"
	BucketDefault      = "default"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limits maps bucket name to limit. BucketDefault covers unnamed buckets.
type Limits map[string]Limit

// For returns the limit for bucket, the default bucket, or 100/min.
func (l Limits) For(bucket string) Limit {
	if v, ok := l[bucket]; ok {
		return v
	}
	if v, ok := l[BucketDefault]; ok {
		return v
	}
	return Limit{Limit: 100, Window: time.Minute}
}

// Limiter is implemented by both backends.
type Limiter interface {
	Allow(ctx context.Context, bucket, key string) (bool, error)
}
