package service

import (
	"context"
	"time"

	"foodhub/internal/domain"
	"foodhub/internal/events"
	"foodhub/internal/models"
	"foodhub/internal/notify"

	"github.com/rs/zerolog"
)

const archiveReasonAPIDelete = "archived_via_api_delete"

// ReservationService owns the booking lifecycle: timing checks, slot
// admission, status transitions, archiving and the notifications each
// transition triggers.
type ReservationService struct {
	store      domain.ReservationStore
	dispatcher domain.Dispatcher
	eventBus   domain.EventPublisher
	logger     *zerolog.Logger
	zone       *time.Location
	devMode    bool

	// now is swappable for tests
	now func() time.Time
}

func NewReservationService(store domain.ReservationStore, dispatcher domain.Dispatcher, eventBus domain.EventPublisher, tzOffsetMinutes int, devMode bool, logger *zerolog.Logger) *ReservationService {
	if tzOffsetMinutes == 0 {
		tzOffsetMinutes = models.DefaultTimezoneOffsetMinutes
	}
	return &ReservationService{
		store:      store,
		dispatcher: dispatcher,
		eventBus:   eventBus,
		logger:     logger,
		zone:       time.FixedZone("restaurant", tzOffsetMinutes*60),
		devMode:    devMode,
		now:        time.Now,
	}
}

// CreateOutcome reports a successful booking plus per-channel dispatch
// metadata. Notification failures never fail the booking.
type CreateOutcome struct {
	Reservation   *models.Reservation
	Notifications []notify.Result
}

// PaymentOutcome reports a payment confirmation. AlreadyPaid marks the
// idempotent repeat case.
type PaymentOutcome struct {
	Reservation   *models.Reservation
	AlreadyPaid   bool
	Notifications []notify.Result
}

// ValidateTiming rejects a wall-clock booking that is in the past or
// closer than the minimum advance window, both judged in the
// restaurant's fixed zone.
func (s *ReservationService) ValidateTiming(date, clock string) error {
	requested, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, date+" "+clock, s.zone)
	if err != nil {
		return &ValidationError{Err: err}
	}

	now := s.now().In(s.zone)
	if requested.Before(now) {
		return &TimingError{Past: true}
	}

	earliest := now.Add(models.MinAdvanceMinutes * time.Minute)
	if requested.Before(earliest) {
		return &TimingError{Earliest: earliest}
	}
	return nil
}

// Admit validates and persists a booking, applying the timing and
// capacity gates to dine-in requests. No notification is sent; callers
// decide whether admission warrants one.
func (s *ReservationService) Admit(ctx context.Context, r *models.Reservation) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return &ValidationError{Err: err}
	}

	if models.IsDineIn(r.DeliveryOption) {
		if err := s.ValidateTiming(r.Date, r.Time); err != nil {
			return err
		}
		if err := s.store.CreateDineInWithSlotLock(ctx, r); err != nil {
			return err
		}
	} else {
		if err := s.store.CreateReservation(ctx, r); err != nil {
			return err
		}
	}

	s.publishEvent(events.EventReservationCreated, r, "")
	return nil
}

// Create admits a direct (no-OTP) booking and dispatches a confirmation
// regardless of payment mode.
func (s *ReservationService) Create(ctx context.Context, r *models.Reservation) (*CreateOutcome, error) {
	if err := s.Admit(ctx, r); err != nil {
		return nil, err
	}

	results := s.dispatch(ctx, confirmationMessage(r))
	return &CreateOutcome{Reservation: r, Notifications: results}, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, includeCancelled bool) ([]*models.Reservation, error) {
	return s.store.ListReservations(ctx, includeCancelled)
}

// Update overwrites a reservation's editable fields; fields omitted
// from the request keep their stored values. A status change to
// cancelled or confirmed additionally notifies the customer; the
// record's Message field doubles as the admin-supplied reason.
func (s *ReservationService) Update(ctx context.Context, r *models.Reservation) (*CreateOutcome, error) {
	prev, err := s.store.GetReservation(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	if r.Status == "" {
		r.Status = prev.Status
	}
	if r.PaymentMode == "" {
		r.PaymentMode = prev.PaymentMode
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = prev.PaymentStatus
	}

	if err := r.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	if err := s.store.UpdateReservation(ctx, r); err != nil {
		return nil, err
	}

	var results []notify.Result
	if r.Status != prev.Status {
		switch r.Status {
		case models.StatusCancelled:
			s.publishEvent(events.EventReservationCancelled, r, r.Message)
			results = s.dispatch(ctx, cancellationMessage(r, r.Message))
		case models.StatusConfirmed:
			s.publishEvent(events.EventReservationConfirmed, r, "")
			results = s.dispatch(ctx, confirmationMessage(r))
		}
	}

	return &CreateOutcome{Reservation: r, Notifications: results}, nil
}

// Cancel marks a reservation cancelled and notifies the customer. The
// row stays in the store; admin listings filter it out.
func (s *ReservationService) Cancel(ctx context.Context, id int64, reason string) (*CreateOutcome, error) {
	if err := s.store.UpdateReservationStatus(ctx, id, models.StatusCancelled); err != nil {
		return nil, err
	}

	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventReservationCancelled, r, reason)
	results := s.dispatch(ctx, cancellationMessage(r, reason))
	return &CreateOutcome{Reservation: r, Notifications: results}, nil
}

// Confirm marks a reservation confirmed and notifies the customer.
func (s *ReservationService) Confirm(ctx context.Context, id int64) (*CreateOutcome, error) {
	if err := s.store.UpdateReservationStatus(ctx, id, models.StatusConfirmed); err != nil {
		return nil, err
	}

	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventReservationConfirmed, r, "")
	results := s.dispatch(ctx, confirmationMessage(r))
	return &CreateOutcome{Reservation: r, Notifications: results}, nil
}

// Delete snapshots the reservation into the archive table and removes
// it from the active table, in that order.
func (s *ReservationService) Delete(ctx context.Context, id int64) (int64, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return 0, err
	}

	archivedID, err := s.store.ArchiveAndDelete(ctx, id, archiveReasonAPIDelete)
	if err != nil {
		return 0, err
	}

	s.publishEvent(events.EventReservationDeleted, r, archiveReasonAPIDelete)
	return archivedID, nil
}

// ResendConfirmation re-dispatches the confirmation message without
// changing any state.
func (s *ReservationService) ResendConfirmation(ctx context.Context, id int64) ([]notify.Result, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, confirmationMessage(r)), nil
}

// ConfirmPayment marks an online payment received and the reservation
// confirmed. Repeat calls are idempotent: the state is untouched and
// the confirmation is simply resent.
func (s *ReservationService) ConfirmPayment(ctx context.Context, id int64, amount float64, transactionID string) (*PaymentOutcome, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.PaymentStatus == models.PaymentPaid {
		results := s.dispatch(ctx, paymentReceivedMessage(r, amount, transactionID, true))
		return &PaymentOutcome{Reservation: r, AlreadyPaid: true, Notifications: results}, nil
	}

	if err := s.store.MarkPaid(ctx, id); err != nil {
		return nil, err
	}

	r, err = s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventReservationPaid, r, transactionID)
	results := s.dispatch(ctx, paymentReceivedMessage(r, amount, transactionID, false))
	return &PaymentOutcome{Reservation: r, Notifications: results}, nil
}

func (s *ReservationService) dispatch(ctx context.Context, msg notify.Message) []notify.Result {
	if s.devMode {
		s.logger.Info().Str("subject", msg.Subject).Msg("dev mode enabled, skipping notification dispatch")
		return notify.Skipped("dev_mode enabled - send skipped")
	}
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Dispatch(ctx, msg)
}

func (s *ReservationService) publishEvent(eventType string, r *models.Reservation, reason string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Date:          r.Date,
		Time:          r.Time,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		Mode:          r.DeliveryOption,
		Reason:        reason,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}
