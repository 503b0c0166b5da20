package repository

import (
	"context"
	"sync/atomic"
	"time"

	"foodhub/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverAttemptStore prefers the primary (Redis) store and degrades
// to the in-memory fallback when it fails, probing the primary again
// after a cooldown.
type FailoverAttemptStore struct {
	primary   domain.AttemptStore
	fallback  domain.AttemptStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverAttemptStore(primary, fallback domain.AttemptStore, logger *zerolog.Logger) *FailoverAttemptStore {
	return &FailoverAttemptStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

const recoveryProbeInterval = time.Minute

func (s *FailoverAttemptStore) Increment(ctx context.Context, otpID int64, ttl time.Duration) (int, error) {
	if s.tryPrimary() {
		count, err := s.primary.Increment(ctx, otpID, ttl)
		if err == nil {
			s.isDown.Store(false)
			return count, nil
		}
		s.markDown(err)
	}
	return s.fallback.Increment(ctx, otpID, ttl)
}

func (s *FailoverAttemptStore) Clear(ctx context.Context, otpID int64) error {
	// Clear both; a counter left behind in the degraded store would
	// otherwise resurface after recovery.
	var primaryErr error
	if s.tryPrimary() {
		if primaryErr = s.primary.Clear(ctx, otpID); primaryErr != nil {
			s.markDown(primaryErr)
		}
	}
	if err := s.fallback.Clear(ctx, otpID); err != nil {
		return err
	}
	return nil
}

func (s *FailoverAttemptStore) tryPrimary() bool {
	if s.primary == nil {
		return false
	}
	if !s.isDown.Load() {
		return true
	}
	last := time.Unix(0, s.lastCheck.Load())
	return time.Since(last) > recoveryProbeInterval
}

func (s *FailoverAttemptStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("primary attempt store failed, falling back to memory")
	s.isDown.Store(true)
	s.lastCheck.Store(time.Now().UnixNano())
}
