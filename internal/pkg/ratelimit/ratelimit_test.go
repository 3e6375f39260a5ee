package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestLimiter_BlocksAfterLimit(t *testing.T) {
	_, client := setup(t)
	l := NewLimiter(client, 3, time.Minute, "login")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i+1)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Greater(t, res.RetryIn, time.Duration(0))

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLimiter_WindowExpires(t *testing.T) {
	mr, client := setup(t)
	l := NewLimiter(client, 1, time.Minute, "login")
	ctx := context.Background()

	_, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	res, _ := l.Allow(ctx, "ip")
	assert.False(t, res.Allowed)

	mr.FastForward(time.Minute + time.Second)

	res, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_FailsOpen(t *testing.T) {
	mr, client := setup(t)
	l := NewLimiter(client, 1, time.Minute, "login")
	mr.Close()

	res, err := l.Allow(context.Background(), "ip")
	assert.Error(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_Reset(t *testing.T) {
	_, client := setup(t)
	l := NewLimiter(client, 1, time.Minute, "login")
	ctx := context.Background()

	_, _ = l.Allow(ctx, "ip")
	require.NoError(t, l.Reset(ctx, "ip"))
	res, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
