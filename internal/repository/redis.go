package repository

import (
	"context"
	"fmt"
	"time"

	"foodhub/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisAttemptStore keeps OTP attempt counters in Redis so they survive
// process restarts and stay bounded via key TTLs.
type RedisAttemptStore struct {
	client *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func attemptKey(otpID int64) string {
	return fmt.Sprintf("otp_attempts:%d", otpID)
}

func (s *RedisAttemptStore) Increment(ctx context.Context, otpID int64, ttl time.Duration) (int, error) {
	if s.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	key := attemptKey(otpID)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("failed to set attempts ttl: %w", err)
		}
	}
	return int(count), nil
}

func (s *RedisAttemptStore) Clear(ctx context.Context, otpID int64) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.Del(ctx, attemptKey(otpID)).Err(); err != nil {
		return fmt.Errorf("failed to clear attempts: %w", err)
	}
	return nil
}
