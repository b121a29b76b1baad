package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"healthassist-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lock:chat_session:"

// compare-and-delete so an expired holder cannot release someone else's lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises across instances with SET NX PX.
type RedisLocker struct {
	rdb          *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
	logger       logger.ILogger
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker holds each lock for at most ttl. Failed releases are
// reported to log; the key then lingers until ttl runs out.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, pollInterval: 50 * time.Millisecond, logger: log}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return l.unlockFunc(redisKey, token), nil
}

func (l *RedisLocker) unlockFunc(redisKey, token string) Unlock {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := l.release(redisKey, token); err != nil && l.logger != nil {
				l.logger.Warn("LOCK", "Failed to release session lock", map[string]interface{}{
					"key":   redisKey,
					"ttl":   l.ttl.String(),
					"error": err.Error(),
				})
			}
		})
	}
}

func (l *RedisLocker) release(redisKey, token string) error {
	releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err()
}
