package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*RedisAttemptStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAttemptStore(client), mr
}

func TestRedisAttemptStoreIncrement(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	count, err := store.Increment(ctx, 7, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.Increment(ctx, 7, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The TTL is set on first increment only.
	ttl := mr.TTL("otp_attempts:7")
	assert.Equal(t, 10*time.Minute, ttl)
}

func TestRedisAttemptStoreTTLExpiry(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	_, err := store.Increment(ctx, 7, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	count, err := store.Increment(ctx, 7, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "counter restarts after the key expires")
}

func TestRedisAttemptStoreClear(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	_, err := store.Increment(ctx, 7, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, 7))

	count, err := store.Increment(ctx, 7, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
