package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON read-through cache for court documents and day grids.
type Cache struct {
	rdb    *redis.Client
	flight singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

func lookup[T any](ctx context.Context, c *Cache, key string) (v T, hit bool, err error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return v, false, nil
	case err != nil:
		return v, false, err
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		// A payload from an older shape is treated as a miss and overwritten.
		return v, false, nil
	}

	return v, true, nil
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// GetOrSetJSON returns the value cached under key, calling load on a miss.
// Concurrent misses for one key share a single load. Redis failures degrade
// to calling load directly; load errors are returned unchanged.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	if v, hit, err := lookup[T](ctx, c, key); err == nil && hit {
		return v, nil
	}

	res, err, _ := c.flight.Do(key, func() (any, error) {
		if v, hit, err := lookup[T](ctx, c, key); err == nil && hit {
			return v, nil
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		_ = c.store(ctx, key, v, ttl)

		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return res.(T), nil
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	const op = "redisrepo.Cache.Invalidate"

	if len(keys) == 0 {
		return nil
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Cache) InvalidateCourt(ctx context.Context, courtID int64) error {
	return c.Invalidate(ctx, redisx.KeyCourt(courtID))
}

func (c *Cache) InvalidateAvailability(ctx context.Context, courtID int64, date string) error {
	return c.Invalidate(ctx, redisx.KeyAvailability(courtID, date))
}
