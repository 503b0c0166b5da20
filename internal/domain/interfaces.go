package domain

import (
	"context"
	"time"

	"foodhub/internal/models"
	"foodhub/internal/notify"
)

// ReservationStore is the persistence contract owned by the record
// store. Services never cache rows across requests; every decision
// re-reads committed state through this interface.
type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	CreateDineInWithSlotLock(ctx context.Context, r *models.Reservation) error
	CountOccupiedTables(ctx context.Context, date, clock string) (int, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context, includeCancelled bool) ([]*models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, id int64, status string) error
	MarkPaid(ctx context.Context, id int64) error
	ArchiveAndDelete(ctx context.Context, id int64, reason string) (int64, error)

	CreateOTP(ctx context.Context, otp *models.PendingOTP) error
	GetOTP(ctx context.Context, id int64) (*models.PendingOTP, error)
	DeleteOTP(ctx context.Context, id int64) (int64, error)
	PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

// AttemptStore counts OTP verification attempts per request id.
type AttemptStore interface {
	Increment(ctx context.Context, otpID int64, ttl time.Duration) (int, error)
	Clear(ctx context.Context, otpID int64) error
}

// Dispatcher fans one message out to the configured transports.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg notify.Message) []notify.Result
}

// EventPublisher emits domain events for in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
