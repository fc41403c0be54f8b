package redisstore

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/open-rails/coffeeshop/drinks"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ListCache is a drinks.Store that serves List from Redis. Redis failures
// fall through to the wrapped store.
//
// The listing is stored under key:<version>. Every successful write bumps
// key:version, so a List that read the store before the write can only fill
// the previous version's entry, which no later reader looks at.
type ListCache struct {
	drinks.Store
	rdb *redis.Client
	key string
	ttl time.Duration
	log logrus.FieldLogger
}

func NewListCache(inner drinks.Store, rdb *redis.Client, key string, ttl time.Duration, log logrus.FieldLogger) *ListCache {
	if key == "" {
		key = "coffeeshop:drinks:list"
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ListCache{Store: inner, rdb: rdb, key: key, ttl: ttl, log: log}
}

func (c *ListCache) List(ctx context.Context) ([]drinks.Drink, error) {
	ver, err := c.version(ctx)
	if err != nil {
		c.log.WithError(err).Warn("drink list cache version read failed")
		return c.Store.List(ctx)
	}
	entry := c.key + ":" + strconv.FormatInt(ver, 10)

	val, err := c.rdb.Get(ctx, entry).Bytes()
	switch {
	case err == redis.Nil:
	case err != nil:
		c.log.WithError(err).Warn("drink list cache read failed")
	default:
		var out []drinks.Drink
		if err := json.Unmarshal(val, &out); err == nil {
			return out, nil
		}
		c.log.Warn("drink list cache entry unreadable")
	}

	out, err := c.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, entry, b, c.ttl).Err(); err != nil {
			c.log.WithError(err).Warn("drink list cache write failed")
		}
	}
	return out, nil
}

func (c *ListCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (c *ListCache) versionKey() string { return c.key + ":version" }

func (c *ListCache) Insert(ctx context.Context, d drinks.Drink) (drinks.Drink, error) {
	out, err := c.Store.Insert(ctx, d)
	if err == nil {
		c.invalidate(ctx)
	}
	return out, err
}

func (c *ListCache) Update(ctx context.Context, d drinks.Drink) (drinks.Drink, error) {
	out, err := c.Store.Update(ctx, d)
	if err == nil {
		c.invalidate(ctx)
	}
	return out, err
}

func (c *ListCache) Delete(ctx context.Context, id int64) error {
	err := c.Store.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

func (c *ListCache) invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, c.versionKey()).Err(); err != nil {
		c.log.WithError(err).Warn("drink list cache invalidation failed")
	}
}
