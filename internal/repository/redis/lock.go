package redisrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Deletes the key only if it still carries our token.
const luaRelease = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

// Lock is a best-effort mutual exclusion key with a TTL.
type Lock struct {
	rdb    *redis.Client
	key    string
	ttl    time.Duration
	script *redis.Script
}

func NewLock(rdb *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{
		rdb:    rdb,
		key:    key,
		ttl:    ttl,
		script: redis.NewScript(luaRelease),
	}
}

// TryAcquire returns a release func when the lock was taken, or nil when
// someone else holds it.
func (l *Lock) TryAcquire(ctx context.Context) (func(context.Context), error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return func(ctx context.Context) {
		_ = l.script.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}, nil
}
