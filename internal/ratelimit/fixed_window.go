package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter : счётчик с фиксированным окном в памяти процесса.
// Окно сбрасывается целиком по таймеру, скользящего окна нет — всплеск
// на границе двух окон может пропустить до 2*max запросов подряд.
// Работает только в пределах одного инстанса; для горизонтального
// масштабирования есть RedisLimiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	Now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		Now:     time.Now,
	}
}

// Allow : true, если вызов укладывается в maxRequests за window
func (l *MemoryLimiter) Allow(ctx context.Context, identifier string, maxRequests int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()

	b, ok := l.buckets[identifier]
	if ok == false || now.After(b.resetAt) {
		l.buckets[identifier] = &bucket{
			count:   1,
			resetAt: now.Add(window),
		}
		return true, nil
	}

	if b.count < maxRequests {
		b.count++
		return true, nil
	}

	return false, nil
}

// RetryAfter : сколько ждать до сброса окна; ноль, если окно уже истекло
func (l *MemoryLimiter) RetryAfter(identifier string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[identifier]
	if ok == false {
		return 0
	}

	wait := b.resetAt.Sub(l.Now())
	if wait < 0 {
		return 0
	}
	return wait
}
