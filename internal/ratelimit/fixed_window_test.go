package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"doctrust-server/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AllowsUpToMax(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "user:u1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "запрос %d должен пройти", i+1)
	}

	allowed, err := limiter.Allow(ctx, "user:u1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "четвёртый запрос в окне должен быть отклонён")
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	ctx := context.Background()

	now := time.Date(2025, 8, 23, 12, 0, 0, 0, time.UTC)
	limiter.Now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "ip:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "ip:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// окно сбрасывается целиком, счётчик начинается заново
	now = now.Add(61 * time.Second)

	allowed, err = limiter.Allow(ctx, "ip:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_IdentifiersAreIndependent(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "user:u1", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "user:u1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// другой вызывающий лимитом первого не задет
	allowed, err = limiter.Allow(ctx, "user:u2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_RetryAfter(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	ctx := context.Background()

	now := time.Date(2025, 8, 23, 12, 0, 0, 0, time.UTC)
	limiter.Now = func() time.Time { return now }

	_, err := limiter.Allow(ctx, "user:u1", 1, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, limiter.RetryAfter("user:u1"))
	assert.Equal(t, time.Duration(0), limiter.RetryAfter("user:unknown"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, time.Duration(0), limiter.RetryAfter("user:u1"))
}
