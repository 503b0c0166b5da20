package service

import (
	"fmt"

	"foodhub/internal/models"
	"foodhub/internal/notify"
)

func otpMessage(r *models.Reservation, code string) notify.Message {
	return notify.Message{
		To:      r.Email,
		Phone:   r.Phone,
		Subject: "Your FoodHub reservation OTP",
		Body:    fmt.Sprintf("Your FoodHub reservation OTP: %s (expires in %d minutes)", code, models.OTPTTLMinutes),
	}
}

func confirmationMessage(r *models.Reservation) notify.Message {
	return notify.Message{
		To:      r.Email,
		Phone:   r.Phone,
		Subject: "Table Reservation Confirmed - FoodHub Restaurant",
		Body: fmt.Sprintf("Hi %s,\n\nYour reservation is confirmed for %s at %s (party of %d). Reservation ID: %d\n\nThank you!",
			r.Name, r.Date, r.Time, r.People, r.ID),
	}
}

func cancellationMessage(r *models.Reservation, reason string) notify.Message {
	body := fmt.Sprintf("Hi %s,\n\nWe are sorry to inform you that your reservation (ID: %d) has been cancelled.",
		r.Name, r.ID)
	if reason != "" {
		body += "\n\nMessage from the restaurant:\n" + reason
	}
	body += "\n\nIf you have questions, please contact us."
	return notify.Message{
		To:      r.Email,
		Phone:   r.Phone,
		Subject: "Reservation Cancelled - FoodHub Restaurant",
		Body:    body,
	}
}

func paymentReceivedMessage(r *models.Reservation, amount float64, transactionID string, already bool) notify.Message {
	body := fmt.Sprintf("Hi %s,\n\n", r.Name)
	if already {
		body += "We have already received your payment. "
	} else if amount > 0 {
		body += fmt.Sprintf("We have received your payment of %.2f. ", amount)
	} else {
		body += "We have received your payment. "
	}
	body += fmt.Sprintf("Your reservation is confirmed. Reservation ID: %d", r.ID)
	if transactionID != "" {
		body += "\nTransaction: " + transactionID
	}
	body += "\n\nThank you!"
	return notify.Message{
		To:      r.Email,
		Phone:   r.Phone,
		Subject: "Payment Received - Reservation Confirmed",
		Body:    body,
	}
}
