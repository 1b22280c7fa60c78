package ports

import (
	"context"
	"time"
)

// RateLimiter : допуск запроса по идентификатору вызывающего.
// Реализации: счётчик в памяти процесса и счётчик в Redis.
type RateLimiter interface {
	Allow(ctx context.Context, identifier string, maxRequests int, window time.Duration) (bool, error)
	RetryAfter(identifier string) time.Duration
}
