package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDeleteOTP(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	otp := &models.PendingOTP{
		ReservationData: `{"name":"Asha Rao"}`,
		Email:           "asha@example.com",
		Phone:           "9876543210",
		OTPHash:         "deadbeef",
		ExpiresAt:       time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, db.CreateOTP(ctx, otp))
	require.NotZero(t, otp.ID)

	got, err := db.GetOTP(ctx, otp.ID)
	require.NoError(t, err)
	assert.Equal(t, otp.OTPHash, got.OTPHash)
	assert.Equal(t, otp.Email, got.Email)
	assert.Equal(t, otp.ReservationData, got.ReservationData)

	deleted, err := db.DeleteOTP(ctx, otp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = db.GetOTP(ctx, otp.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	// A second delete finds nothing left to consume.
	deleted, err = db.DeleteOTP(ctx, otp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestCreateOTPRestoresUnderSameID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	otp := &models.PendingOTP{
		ReservationData: `{"name":"Asha Rao"}`,
		Email:           "asha@example.com",
		Phone:           "9876543210",
		OTPHash:         "deadbeef",
		ExpiresAt:       time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, db.CreateOTP(ctx, otp))
	id := otp.ID

	deleted, err := db.DeleteOTP(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	// Re-inserting the fetched row keeps its original id.
	require.NoError(t, db.CreateOTP(ctx, otp))
	got, err := db.GetOTP(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, otp.OTPHash, got.OTPHash)
}

func TestPurgeExpiredOTPs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Now()
	expired := &models.PendingOTP{
		ReservationData: "{}", Email: "a@example.com", Phone: "9876543210",
		OTPHash: "aa", ExpiresAt: now.Add(-time.Minute),
	}
	live := &models.PendingOTP{
		ReservationData: "{}", Email: "b@example.com", Phone: "9876543211",
		OTPHash: "bb", ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, db.CreateOTP(ctx, expired))
	require.NoError(t, db.CreateOTP(ctx, live))

	purged, err := db.PurgeExpiredOTPs(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = db.GetOTP(ctx, expired.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = db.GetOTP(ctx, live.ID)
	assert.NoError(t, err)
}
