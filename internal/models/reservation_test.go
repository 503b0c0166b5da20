package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReservation() Reservation {
	return Reservation{
		Name:        "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        "2026-09-10",
		Time:        "19:00",
		People:      4,
		PaymentMode: PaymentModeCash,
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.True(t, IsValidEmail("  padded@example.co.in  "))
	assert.False(t, IsValidEmail("no-at-sign"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail(""))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "919876543210", NormalizePhone("+91 98765-43210"), "country code digits kept")
	assert.Equal(t, "9876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "", NormalizePhone("12345"), "too short")
	assert.Equal(t, "", NormalizePhone("1234567890123456"), "too long")
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestIsDineIn(t *testing.T) {
	assert.True(t, IsDineIn(""))
	assert.True(t, IsDineIn(ModeDineIn))
	assert.False(t, IsDineIn(ModeTakeaway))
	assert.False(t, IsDineIn(ModeDelivery))
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentNotRequired, DerivePaymentStatus("Cash"))
	assert.Equal(t, PaymentNotRequired, DerivePaymentStatus("cash"))
	assert.Equal(t, PaymentPending, DerivePaymentStatus("Online"))
}

func TestClockMinutes(t *testing.T) {
	m, err := ClockMinutes("18:30")
	require.NoError(t, err)
	assert.Equal(t, 18*60+30, m)

	m, err = ClockMinutes("9:05")
	require.NoError(t, err)
	assert.Equal(t, 9*60+5, m)

	_, err = ClockMinutes("25:00")
	assert.Error(t, err)
	_, err = ClockMinutes("18:61")
	assert.Error(t, err)
	_, err = ClockMinutes("1800")
	assert.Error(t, err)
}

func TestNormalizeDefaults(t *testing.T) {
	r := validReservation()
	r.Phone = "+91 98765-43210"
	r.Normalize()

	assert.Equal(t, ModeDineIn, r.DeliveryOption)
	assert.Equal(t, "919876543210", r.Phone)
	assert.Equal(t, PaymentNotRequired, r.PaymentStatus)
	assert.Equal(t, StatusPending, r.Status)
}

func TestNormalizeOnline(t *testing.T) {
	r := validReservation()
	r.PaymentMode = PaymentModeOnline
	r.Normalize()
	assert.Equal(t, PaymentPending, r.PaymentStatus)
}

func TestValidate(t *testing.T) {
	r := validReservation()
	require.NoError(t, r.Validate())

	missing := validReservation()
	missing.Name = ""
	assert.Error(t, missing.Validate())

	badPeople := validReservation()
	badPeople.People = 0
	assert.Error(t, badPeople.Validate())

	badEmail := validReservation()
	badEmail.Email = "nope"
	assert.Error(t, badEmail.Validate())

	badDate := validReservation()
	badDate.Date = "10-09-2026"
	assert.Error(t, badDate.Validate())

	badTime := validReservation()
	badTime.Time = "7pm"
	assert.Error(t, badTime.Validate())

	delivery := validReservation()
	delivery.DeliveryOption = ModeDelivery
	assert.Error(t, delivery.Validate(), "delivery needs an address")
	delivery.DeliveryAddress = "12 MG Road"
	assert.NoError(t, delivery.Validate())

	unknown := validReservation()
	unknown.DeliveryOption = "Drive-through"
	assert.Error(t, unknown.Validate())
}
