package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"foodhub/internal/database"
	"foodhub/internal/domain"
	"foodhub/internal/models"
	"foodhub/internal/notify"

	"github.com/rs/zerolog"
)

// OTPService runs the verify-before-book flow: it parks a candidate
// reservation behind a hashed one-time code and finalizes it through the
// ReservationService once the code checks out.
type OTPService struct {
	store        domain.ReservationStore
	attempts     domain.AttemptStore
	dispatcher   domain.Dispatcher
	reservations *ReservationService
	logger       *zerolog.Logger
	devMode      bool
	onlineAmount float64

	now func() time.Time
}

func NewOTPService(store domain.ReservationStore, attempts domain.AttemptStore, dispatcher domain.Dispatcher, reservations *ReservationService, devMode bool, onlineAmount float64, logger *zerolog.Logger) *OTPService {
	if onlineAmount <= 0 {
		onlineAmount = models.DefaultOnlineAmount
	}
	return &OTPService{
		store:        store,
		attempts:     attempts,
		dispatcher:   dispatcher,
		reservations: reservations,
		logger:       logger,
		devMode:      devMode,
		onlineAmount: onlineAmount,
		now:          time.Now,
	}
}

// RequestOutcome reports a stored OTP request. DevCode carries the
// plaintext code only when dev mode is on.
type RequestOutcome struct {
	OTPID         int64
	ExpiresAt     time.Time
	Notifications []notify.Result
	DevCode       string
}

// VerifyOutcome reports a finalized booking. Online payments defer the
// confirmation until the payment webhook fires.
type VerifyOutcome struct {
	Reservation     *models.Reservation
	PaymentRequired bool
	PaymentAmount   float64
	Notifications   []notify.Result
}

// RequestOTP validates the candidate reservation, stores it alongside a
// hashed code and dispatches the code to the customer.
func (s *OTPService) RequestOTP(ctx context.Context, r *models.Reservation) (*RequestOutcome, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}
	// Reject hopeless dine-in slots before spending a code on them.
	// Verify re-checks, so a request that ages past the window while the
	// code is in flight still gets caught.
	if models.IsDineIn(r.DeliveryOption) {
		if err := s.reservations.ValidateTiming(r.Date, r.Time); err != nil {
			return nil, err
		}
	}

	// Best-effort lazy cleanup; the janitor covers the rest.
	if _, err := s.store.PurgeExpiredOTPs(ctx, s.now()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to purge expired otps")
	}

	code, err := generateCode(models.OTPLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reservation: %w", err)
	}

	otp := &models.PendingOTP{
		ReservationData: string(data),
		Email:           r.Email,
		Phone:           r.Phone,
		OTPHash:         hashCode(code),
		ExpiresAt:       s.now().Add(models.OTPTTLMinutes * time.Minute),
	}
	if err := s.store.CreateOTP(ctx, otp); err != nil {
		return nil, err
	}

	outcome := &RequestOutcome{OTPID: otp.ID, ExpiresAt: otp.ExpiresAt}
	if s.devMode {
		s.logger.Info().Int64("otp_id", otp.ID).Msg("dev mode enabled, skipping otp dispatch")
		outcome.Notifications = notify.Skipped("dev_mode enabled - send skipped")
		outcome.DevCode = code
		return outcome, nil
	}

	outcome.Notifications = s.dispatcher.Dispatch(ctx, otpMessage(r, code))
	return outcome, nil
}

// VerifyOTP checks the supplied code against the stored hash and, on
// match, admits the parked reservation through the regular timing and
// capacity gates. The attempt counter caps retries per request id.
func (s *OTPService) VerifyOTP(ctx context.Context, otpID int64, code string) (*VerifyOutcome, error) {
	count, err := s.attempts.Increment(ctx, otpID, models.OTPTTLMinutes*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempt: %w", err)
	}
	if count > models.MaxOTPAttempts {
		return nil, ErrTooManyAttempts
	}

	otp, err := s.store.GetOTP(ctx, otpID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}

	// Expired at the exact expiry instant, matching the purge cutoff.
	if !s.now().Before(otp.ExpiresAt) {
		return nil, ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(otp.OTPHash)) != 1 {
		return nil, ErrOTPMismatch
	}

	var r models.Reservation
	if err := json.Unmarshal([]byte(otp.ReservationData), &r); err != nil {
		return nil, fmt.Errorf("stored reservation data is corrupt: %w", err)
	}

	// Consume the request before admitting so a matching code books at
	// most once: of two concurrent verifications, only the one that
	// deletes the row proceeds.
	deleted, err := s.store.DeleteOTP(ctx, otpID)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrOTPNotFound
	}

	if err := s.reservations.Admit(ctx, &r); err != nil {
		// The booking was rejected, not the code. Put the request back
		// under its id so the customer can retry once the gate clears.
		if restoreErr := s.store.CreateOTP(ctx, otp); restoreErr != nil {
			s.logger.Error().Err(restoreErr).Int64("otp_id", otpID).Msg("failed to restore otp after rejected booking")
		}
		return nil, err
	}

	if err := s.attempts.Clear(ctx, otpID); err != nil {
		s.logger.Warn().Err(err).Int64("otp_id", otpID).Msg("failed to clear attempt counter")
	}

	outcome := &VerifyOutcome{
		Reservation:     &r,
		PaymentRequired: strings.EqualFold(r.PaymentMode, models.PaymentModeOnline),
		PaymentAmount:   s.onlineAmount,
	}

	if outcome.PaymentRequired {
		// Confirmation waits for the payment webhook.
		outcome.Notifications = []notify.Result{{Channel: notify.ChannelEmail, OK: false, Info: "awaiting_payment"}}
		return outcome, nil
	}

	outcome.Notifications = s.reservations.dispatch(ctx, confirmationMessage(&r))
	return outcome, nil
}

func generateCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
