package events

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// SubscribeAudit attaches an audit-log consumer to every reservation
// event type. Each lifecycle transition lands in the structured log as
// one line, so operators can reconstruct what happened to a booking
// without reading the database.
func SubscribeAudit(bus *EventBus, logger *zerolog.Logger) {
	types := []string{
		EventReservationCreated,
		EventReservationConfirmed,
		EventReservationCancelled,
		EventReservationPaid,
		EventReservationDeleted,
	}
	for _, eventType := range types {
		bus.Subscribe(eventType, auditHandler(logger))
	}
}

func auditHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		var payload ReservationEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			logger.Warn().Err(err).Str("event_type", event.Type).Msg("audit: undecodable event payload")
			return err
		}

		entry := logger.Info().
			Str("event_type", event.Type).
			Int64("reservation_id", payload.ReservationID).
			Str("date", payload.Date).
			Str("time", payload.Time).
			Str("status", payload.Status).
			Str("payment_status", payload.PaymentStatus)
		if payload.Reason != "" {
			entry = entry.Str("reason", payload.Reason)
		}
		entry.Msg("reservation event")
		return nil
	}
}
