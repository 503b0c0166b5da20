package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	PaymentModeCash   = "Cash"
	PaymentModeOnline = "Online"

	PaymentNotRequired = "not_required"
	PaymentPending     = "pending"
	PaymentPaid        = "paid"
)

const (
	ModeDineIn   = "Dine-in"
	ModeTakeaway = "Takeaway"
	ModeDelivery = "Delivery"
)

const (
	// TotalTables is the fixed table capacity per overlapping slot.
	TotalTables = 10

	// OverlapMinutes is the half-window within which two bookings
	// contend for the same table. A booking exactly this far away
	// does not contend (strict less-than).
	OverlapMinutes = 120
)

const (
	// OTPLength digits in a generated one-time code
	OTPLength = 6

	// OTPTTLMinutes lifetime of a pending OTP request
	OTPTTLMinutes = 10

	// MaxOTPAttempts verification tries per request id; the attempt
	// after this one is rejected regardless of the supplied code
	MaxOTPAttempts = 5
)

const (
	// MinAdvanceMinutes minimum lead time for a booking: 2 hours minus
	// one minute of slack so "right now plus two hours" is accepted
	MinAdvanceMinutes = 2*60 - 1

	// DefaultTimezoneOffsetMinutes restaurant civil zone, UTC+5:30
	DefaultTimezoneOffsetMinutes = 330

	// DefaultCountryCode for E.164 phone formatting
	DefaultCountryCode = "91"

	// DefaultOnlineAmount charged when the payment webhook omits one
	DefaultOnlineAmount = 500
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
