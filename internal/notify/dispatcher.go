package notify

import (
	"context"

	"foodhub/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher fans a message out to every configured transport,
// best-effort. A transport failure is captured in its Result and never
// aborts the remaining sends.
type Dispatcher struct {
	senders []Notifier
	logger  *zerolog.Logger
}

func NewDispatcher(logger *zerolog.Logger, senders ...Notifier) *Dispatcher {
	return &Dispatcher{senders: senders, logger: logger}
}

// Dispatch sends over every transport and returns one Result per
// transport, in registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) []Result {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	results := make([]Result, 0, len(d.senders))
	for _, sender := range d.senders {
		res := Result{Channel: sender.Channel(), OK: true}
		if err := sender.Send(ctx, msg); err != nil {
			res.OK = false
			res.Error = err.Error()
			d.logger.Warn().
				Str("message_id", msg.ID).
				Str("channel", string(sender.Channel())).
				Err(err).
				Msg("notification dispatch failed")
		} else {
			d.logger.Info().
				Str("message_id", msg.ID).
				Str("channel", string(sender.Channel())).
				Msg("notification dispatched")
		}
		metrics.IncNotification(string(res.Channel), res.OK)
		results = append(results, res)
	}
	return results
}

// Skipped builds the metadata reported when dev mode suppresses sending.
func Skipped(info string) []Result {
	return []Result{{Channel: ChannelEmail, OK: false, Info: info}}
}
