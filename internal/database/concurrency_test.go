package database

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"foodhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent requests for the marginal last tables must never overbook:
// the per-process slot lock serializes the check-and-insert.
func TestConcurrentDineInNeverOverbooks(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "concurrency.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	const attempts = 25

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.CreateDineInWithSlotLock(ctx, testReservation("18:00"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *CapacityError
		require.True(t, errors.As(err, &capErr), "unexpected error: %v", err)
	}
	assert.Equal(t, models.TotalTables, succeeded)

	occupied, err := db.CountOccupiedTables(ctx, "2026-09-10", "18:00")
	require.NoError(t, err)
	assert.Equal(t, models.TotalTables, occupied)
}
