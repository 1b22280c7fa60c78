package ratelimit

import (
	"context"
	"fmt"
	"time"

	"doctrust-server/config"
	"doctrust-server/internal/util"
)

// RedisLimiter : то же фиксированное окно, но счётчик живёт в Redis —
// для запуска нескольких инстансов за балансировщиком.
// INCR атомарен, EXPIRE ставится только на первом инкременте окна.
type RedisLimiter struct {
	client *config.RedisClient
}

func NewRedisLimiter(client *config.RedisClient) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, identifier string, maxRequests int, window time.Duration) (bool, error) {
	key := l.key(identifier)

	count, err := l.client.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, util.LogError("[RedisLimiter] ошибка инкремента счётчика", err)
	}

	if count == 1 {
		if err := l.client.Client.Expire(ctx, key, window).Err(); err != nil {
			return false, util.LogError("[RedisLimiter] ошибка установки TTL", err)
		}
	}

	return count <= int64(maxRequests), nil
}

func (l *RedisLimiter) RetryAfter(identifier string) time.Duration {
	ttl, err := l.client.Client.TTL(context.Background(), l.key(identifier)).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func (l *RedisLimiter) key(identifier string) string {
	return fmt.Sprintf("ratelimit:%s", identifier)
}
