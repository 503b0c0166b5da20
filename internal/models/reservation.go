package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MenuItem is one ordered dish on a reservation.
type MenuItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Reservation is the active booking record. Date and Time are kept as
// wall-clock strings (YYYY-MM-DD, HH:MM) in the restaurant's zone; no
// timezone is stored.
type Reservation struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	People          int        `json:"people"`
	Occasion        string     `json:"occasion,omitempty"`
	MealType        string     `json:"meal_type,omitempty"`
	PaymentMode     string     `json:"payment_mode"`
	PaymentStatus   string     `json:"payment_status"`
	Message         string     `json:"message,omitempty"`
	Status          string     `json:"status"`
	DeliveryOption  string     `json:"delivery_option"`
	MenuItems       []MenuItem `json:"menu_items,omitempty"`
	DeliveryAddress string     `json:"delivery_address,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ArchivedReservation is an append-only snapshot taken right before a
// reservation is removed from the active table.
type ArchivedReservation struct {
	ID             int64     `json:"id"`
	OriginalID     int64     `json:"original_id"`
	Reservation               // snapshot of the deleted row (ID field unused)
	ArchivedAt     time.Time `json:"archived_at"`
	ArchivedReason string    `json:"archived_reason"`
}

// PendingOTP holds a candidate reservation awaiting code verification.
// The code itself is never stored, only its SHA-256 hex digest.
type PendingOTP struct {
	ID              int64     `json:"id"`
	ReservationData string    `json:"-"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	OTPHash         string    `json:"-"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether the address has a plausible mailbox shape.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// NormalizePhone strips everything but digits and rejects numbers
// outside the 7-15 digit range. Returns "" when unusable.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	return digits
}

// IsDineIn reports whether a service mode consumes a table slot.
// An unset mode defaults to dine-in.
func IsDineIn(mode string) bool {
	return mode == "" || mode == ModeDineIn
}

// DerivePaymentStatus maps a payment mode to its initial payment state.
func DerivePaymentStatus(paymentMode string) string {
	if strings.EqualFold(paymentMode, PaymentModeCash) {
		return PaymentNotRequired
	}
	return PaymentPending
}

// ClockMinutes parses an HH:MM wall-clock string into minutes since
// midnight. Accepts a single-digit hour as well.
func ClockMinutes(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h*60 + m, nil
}

// Normalize fills derived fields: default service mode, canonical phone,
// trimmed email, initial payment and lifecycle status.
func (r *Reservation) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	if r.DeliveryOption == "" {
		r.DeliveryOption = ModeDineIn
	}
	if norm := NormalizePhone(r.Phone); norm != "" {
		r.Phone = norm
	}
	r.PaymentStatus = DerivePaymentStatus(r.PaymentMode)
	if r.Status == "" {
		r.Status = StatusPending
	}
}

// Validate checks the required fields of an incoming booking request.
func (r *Reservation) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Email == "" || r.Phone == "" ||
		r.Date == "" || r.Time == "" || r.PaymentMode == "" {
		return fmt.Errorf("missing required fields")
	}
	if r.People <= 0 {
		return fmt.Errorf("people must be a positive number")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email")
	}
	if NormalizePhone(r.Phone) == "" {
		return fmt.Errorf("invalid phone")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", r.Date)
	}
	if _, err := ClockMinutes(r.Time); err != nil {
		return err
	}
	switch r.DeliveryOption {
	case "", ModeDineIn, ModeTakeaway:
	case ModeDelivery:
		if strings.TrimSpace(r.DeliveryAddress) == "" {
			return fmt.Errorf("delivery address is required for delivery orders")
		}
	default:
		return fmt.Errorf("unknown delivery option %q", r.DeliveryOption)
	}
	return nil
}
