package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryAttemptStore tracks OTP verification attempts in-process.
// Counts are mutated under one mutex so concurrent verifications can
// never lose an increment; entries expire with the OTP TTL and are
// swept opportunistically so abandoned requests do not accumulate.
type MemoryAttemptStore struct {
	mu        sync.Mutex
	attempts  map[int64]*attemptEntry
	lastSweep time.Time
}

type attemptEntry struct {
	count     int
	expiresAt time.Time
}

const sweepInterval = time.Minute

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{attempts: make(map[int64]*attemptEntry)}
}

func (s *MemoryAttemptStore) Increment(ctx context.Context, otpID int64, ttl time.Duration) (int, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)

	entry, ok := s.attempts[otpID]
	if !ok || now.After(entry.expiresAt) {
		s.attempts[otpID] = &attemptEntry{count: 1, expiresAt: now.Add(ttl)}
		return 1, nil
	}
	entry.count++
	return entry.count, nil
}

func (s *MemoryAttemptStore) Clear(ctx context.Context, otpID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, otpID)
	return nil
}

// sweepLocked drops expired entries at most once per sweepInterval.
// Caller holds the mutex.
func (s *MemoryAttemptStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, entry := range s.attempts {
		if now.After(entry.expiresAt) {
			delete(s.attempts, id)
		}
	}
}
