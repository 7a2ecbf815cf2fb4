package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/redis/go-redis/v9"
)

// The window lives in a sorted set of attempt timestamps (ms). Rejected
// attempts are not recorded, so a caller hammering the endpoint does not
// push its own retry time further out.
//
// KEYS[1] window key
// ARGV    now_ms, window_ms, max, attempt id
// returns {1, 0} when admitted, {0, wait_ms} otherwise
var slidingWindow = redis.NewScript(`
local now, window, max = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)

if redis.call('ZCARD', KEYS[1]) < max then
  redis.call('ZADD', KEYS[1], now, ARGV[4])
  redis.call('PEXPIRE', KEYS[1], window)
  return {1, 0}
end

local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local wait = tonumber(oldest[2]) + window - now
if wait < 1 then wait = 1 end
return {0, wait}
`)

// SlidingWindowLimiter admits at most max attempts per id within window.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	max    int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(rdb *redis.Client, scope string, max int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow records an attempt for id and reports whether it was admitted. When
// it was not, wait is how long until the oldest attempt leaves the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, id string) (allowed bool, wait time.Duration, err error) {
	const op = "redisrepo.SlidingWindowLimiter.Allow"

	out, err := slidingWindow.Run(ctx, l.rdb,
		[]string{redisx.KeyRateLimit(l.scope, id)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.max, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(out) != 2 {
		return false, 0, fmt.Errorf("%s: unexpected script reply %v", op, out)
	}

	return out[0] == 1, time.Duration(out[1]) * time.Millisecond, nil
}
