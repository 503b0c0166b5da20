package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"foodhub/internal/database"
	"foodhub/internal/events"
	"foodhub/internal/models"
	"foodhub/internal/notify"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	sent []notify.Message
	fail bool
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, msg notify.Message) []notify.Result {
	f.sent = append(f.sent, msg)
	if f.fail {
		return []notify.Result{{Channel: notify.ChannelEmail, OK: false, Error: "smtp down"}}
	}
	return []notify.Result{{Channel: notify.ChannelEmail, OK: true}}
}

// restaurantNow is the frozen clock for timing tests: 10:00 on the test
// booking date, in the restaurant's zone.
var restaurantZone = time.FixedZone("restaurant", models.DefaultTimezoneOffsetMinutes*60)

func frozenNow() time.Time {
	return time.Date(2026, 9, 10, 10, 0, 0, 0, restaurantZone)
}

func newTestService(t *testing.T) (*ReservationService, *database.DB, *fakeDispatcher) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dispatcher := &fakeDispatcher{}
	svc := NewReservationService(db, dispatcher, events.NewEventBus(), models.DefaultTimezoneOffsetMinutes, false, &logger)
	svc.now = frozenNow
	return svc, db, dispatcher
}

func bookingAt(clock string) *models.Reservation {
	return &models.Reservation{
		Name:        "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        "2026-09-10",
		Time:        clock,
		People:      2,
		PaymentMode: models.PaymentModeCash,
	}
}

func TestValidateTiming(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Strictly earlier than now: in the past.
	err := svc.ValidateTiming("2026-09-10", "09:00")
	var timingErr *TimingError
	require.True(t, errors.As(err, &timingErr))
	assert.True(t, timingErr.Past)
	assert.Contains(t, timingErr.Error(), "past")

	// Inside the advance window: rejected with the earliest acceptable time.
	err = svc.ValidateTiming("2026-09-10", "11:00")
	require.True(t, errors.As(err, &timingErr))
	assert.False(t, timingErr.Past)
	assert.Contains(t, timingErr.Error(), "2026-09-10 11:59")

	// Exactly 2h-1min ahead is the first acceptable slot.
	assert.NoError(t, svc.ValidateTiming("2026-09-10", "11:59"))

	// No maximum advance.
	assert.NoError(t, svc.ValidateTiming("2030-01-01", "12:00"))
}

func TestCreateDineInTimingRejected(t *testing.T) {
	svc, _, dispatcher := newTestService(t)

	_, err := svc.Create(context.Background(), bookingAt("09:00"))
	var timingErr *TimingError
	require.True(t, errors.As(err, &timingErr))
	assert.Empty(t, dispatcher.sent)
}

func TestCreateDineInCapacityRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < models.TotalTables; i++ {
		r := bookingAt("19:00")
		r.Normalize()
		require.NoError(t, db.CreateDineInWithSlotLock(ctx, r))
	}

	_, err := svc.Create(ctx, bookingAt("19:00"))
	var capErr *database.CapacityError
	require.True(t, errors.As(err, &capErr))
}

func TestCreateTakeawaySkipsGates(t *testing.T) {
	svc, _, _ := newTestService(t)

	// A takeaway order in the past raises no timing objection.
	r := bookingAt("09:00")
	r.DeliveryOption = models.ModeTakeaway
	outcome, err := svc.Create(context.Background(), r)
	require.NoError(t, err)
	assert.NotZero(t, outcome.Reservation.ID)
}

func TestCreateDispatchesConfirmation(t *testing.T) {
	svc, _, dispatcher := newTestService(t)

	outcome, err := svc.Create(context.Background(), bookingAt("19:00"))
	require.NoError(t, err)

	require.Len(t, dispatcher.sent, 1)
	assert.Contains(t, dispatcher.sent[0].Subject, "Confirmed")
	assert.Equal(t, "asha@example.com", dispatcher.sent[0].To)
	require.Len(t, outcome.Notifications, 1)
	assert.True(t, outcome.Notifications[0].OK)
}

func TestCreateValidationError(t *testing.T) {
	svc, _, _ := newTestService(t)

	r := bookingAt("19:00")
	r.Email = "not-an-email"
	_, err := svc.Create(context.Background(), r)
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestNotificationFailureDoesNotFailBooking(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	dispatcher.fail = true

	outcome, err := svc.Create(context.Background(), bookingAt("19:00"))
	require.NoError(t, err)
	require.Len(t, outcome.Notifications, 1)
	assert.False(t, outcome.Notifications[0].OK)
	assert.Equal(t, "smtp down", outcome.Notifications[0].Error)
}

func TestDevModeSkipsDispatch(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dispatcher := &fakeDispatcher{}
	svc := NewReservationService(db, dispatcher, nil, models.DefaultTimezoneOffsetMinutes, true, &logger)
	svc.now = frozenNow

	outcome, err := svc.Create(context.Background(), bookingAt("19:00"))
	require.NoError(t, err)
	assert.Empty(t, dispatcher.sent)
	require.Len(t, outcome.Notifications, 1)
	assert.Contains(t, outcome.Notifications[0].Info, "skipped")
}

func TestUpdateStatusChangeNotifies(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	outcome, err := svc.Create(ctx, bookingAt("19:00"))
	require.NoError(t, err)
	dispatcher.sent = nil

	// Same status: silent update.
	updated := *outcome.Reservation
	updated.People = 5
	_, err = svc.Update(ctx, &updated)
	require.NoError(t, err)
	assert.Empty(t, dispatcher.sent)

	// Cancellation notifies, carrying the admin message as the reason.
	updated.Status = models.StatusCancelled
	updated.Message = "kitchen flooded"
	_, err = svc.Update(ctx, &updated)
	require.NoError(t, err)
	require.Len(t, dispatcher.sent, 1)
	assert.Contains(t, dispatcher.sent[0].Subject, "Cancelled")
	assert.Contains(t, dispatcher.sent[0].Body, "kitchen flooded")

	// Confirmation notifies too.
	dispatcher.sent = nil
	updated.Status = models.StatusConfirmed
	_, err = svc.Update(ctx, &updated)
	require.NoError(t, err)
	require.Len(t, dispatcher.sent, 1)
	assert.Contains(t, dispatcher.sent[0].Subject, "Confirmed")
}

func TestCancelKeepsRowHidesFromActiveList(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	outcome, err := svc.Create(ctx, bookingAt("19:00"))
	require.NoError(t, err)
	dispatcher.sent = nil

	_, err = svc.Cancel(ctx, outcome.Reservation.ID, "double booking")
	require.NoError(t, err)
	require.Len(t, dispatcher.sent, 1)
	assert.Contains(t, dispatcher.sent[0].Body, "double booking")

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusCancelled, all[0].Status)
}

func TestDeleteArchivesFirst(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	outcome, err := svc.Create(ctx, bookingAt("19:00"))
	require.NoError(t, err)
	id := outcome.Reservation.ID

	archivedID, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	require.NotZero(t, archivedID)

	_, err = svc.Get(ctx, id)
	assert.True(t, errors.Is(err, database.ErrNotFound))

	archived, err := db.GetArchivedByOriginalID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "archived_via_api_delete", archived.ArchivedReason)
}

func TestResendConfirmation(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	outcome, err := svc.Create(ctx, bookingAt("19:00"))
	require.NoError(t, err)
	dispatcher.sent = nil

	results, err := svc.ResendConfirmation(ctx, outcome.Reservation.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, dispatcher.sent, 1)
	assert.Contains(t, dispatcher.sent[0].Subject, "Confirmed")

	// State is untouched.
	got, err := svc.Get(ctx, outcome.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	r := bookingAt("19:00")
	r.PaymentMode = models.PaymentModeOnline
	outcome, err := svc.Create(ctx, r)
	require.NoError(t, err)
	id := outcome.Reservation.ID
	dispatcher.sent = nil

	first, err := svc.ConfirmPayment(ctx, id, 500, "txn_123")
	require.NoError(t, err)
	assert.False(t, first.AlreadyPaid)
	assert.Equal(t, models.PaymentPaid, first.Reservation.PaymentStatus)
	assert.Equal(t, models.StatusConfirmed, first.Reservation.Status)
	require.Len(t, dispatcher.sent, 1)
	assert.Contains(t, dispatcher.sent[0].Body, "txn_123")

	// Second call: no state change, confirmation resent, no error.
	second, err := svc.ConfirmPayment(ctx, id, 500, "txn_123")
	require.NoError(t, err)
	assert.True(t, second.AlreadyPaid)
	assert.Equal(t, models.PaymentPaid, second.Reservation.PaymentStatus)
	assert.Len(t, dispatcher.sent, 2)
}

func TestConfirmPaymentUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ConfirmPayment(context.Background(), 999, 0, "")
	assert.True(t, errors.Is(err, database.ErrNotFound))
}
