package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAttemptStoreIncrement(t *testing.T) {
	store := NewMemoryAttemptStore()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		count, err := store.Increment(ctx, 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	// Another id counts independently.
	count, err := store.Increment(ctx, 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryAttemptStoreConcurrentIncrements(t *testing.T) {
	store := NewMemoryAttemptStore()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment(ctx, 1, time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every concurrent increment is accounted for.
	count, err := store.Increment(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, workers+1, count)
}

func TestMemoryAttemptStoreExpiry(t *testing.T) {
	store := NewMemoryAttemptStore()
	ctx := context.Background()

	_, err := store.Increment(ctx, 1, -time.Second)
	require.NoError(t, err)

	// Expired entry restarts the count.
	count, err := store.Increment(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryAttemptStoreSweepDropsExpired(t *testing.T) {
	store := NewMemoryAttemptStore()
	ctx := context.Background()

	_, err := store.Increment(ctx, 1, -time.Second)
	require.NoError(t, err)

	// Force the next increment to run a sweep.
	store.mu.Lock()
	store.lastSweep = time.Time{}
	store.mu.Unlock()

	_, err = store.Increment(ctx, 2, time.Minute)
	require.NoError(t, err)

	store.mu.Lock()
	_, ok := store.attempts[1]
	store.mu.Unlock()
	assert.False(t, ok, "expired entry swept")
}

func TestMemoryAttemptStoreClear(t *testing.T) {
	store := NewMemoryAttemptStore()
	ctx := context.Background()

	_, err := store.Increment(ctx, 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, 1))

	count, err := store.Increment(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
