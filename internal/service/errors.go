package service

import (
	"errors"
	"fmt"
	"time"

	"foodhub/internal/models"
)

var (
	ErrOTPNotFound     = errors.New("OTP not found")
	ErrOTPExpired      = errors.New("OTP expired")
	ErrOTPMismatch     = errors.New("invalid OTP")
	ErrTooManyAttempts = errors.New("too many attempts, try again later")
)

// ValidationError wraps a request-shape failure so transports can map it
// to a 400 without string matching.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// TimingError rejects a booking that is in the past or inside the
// minimum-advance window. Earliest is only set for the latter case.
type TimingError struct {
	Past     bool
	Earliest time.Time
}

func (e *TimingError) Error() string {
	if e.Past {
		return "reservation time is in the past"
	}
	return fmt.Sprintf("reservations require at least 2 hours advance notice; earliest acceptable time is %s",
		e.Earliest.Format(models.DateLayout+" "+models.TimeLayout))
}
