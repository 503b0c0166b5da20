package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"foodhub/internal/models"
)

// CreateOTP stores a pending request. A non-zero otp.ID re-inserts the
// row under that id, which lets the verify flow put a consumed request
// back when the booking behind it is rejected.
func (db *DB) CreateOTP(ctx context.Context, otp *models.PendingOTP) error {
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}

	if otp.ID != 0 {
		query := `INSERT INTO otps (id, reservation_data, email, phone, otp_hash, expires_at, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err := db.ExecContext(ctx, query,
			otp.ID,
			otp.ReservationData,
			otp.Email,
			otp.Phone,
			otp.OTPHash,
			otp.ExpiresAt,
			otp.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create otp: %w", err)
		}
		return nil
	}

	query := `INSERT INTO otps (reservation_data, email, phone, otp_hash, expires_at, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		otp.ReservationData,
		otp.Email,
		otp.Phone,
		otp.OTPHash,
		otp.ExpiresAt,
		otp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	otp.ID = id
	return nil
}

func (db *DB) GetOTP(ctx context.Context, id int64) (*models.PendingOTP, error) {
	query := `SELECT id, reservation_data, email, phone, otp_hash, expires_at, created_at
              FROM otps WHERE id = ?`
	var otp models.PendingOTP
	err := db.QueryRowContext(ctx, query, id).Scan(
		&otp.ID, &otp.ReservationData, &otp.Email, &otp.Phone,
		&otp.OTPHash, &otp.ExpiresAt, &otp.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}
	return &otp, nil
}

// DeleteOTP removes a pending request and reports how many rows went.
// The verify flow uses the count as a single-use guard: whichever caller
// deletes the row wins, everyone else sees 0.
func (db *DB) DeleteOTP(ctx context.Context, id int64) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM otps WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete otp: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// PurgeExpiredOTPs removes every pending request past its expiry.
// Called opportunistically at the start of request-otp and by the janitor.
func (db *DB) PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired otps: %w", err)
	}
	purged, _ := result.RowsAffected()
	return purged, nil
}
