// Package notify abstracts outbound customer messaging. Callers hand a
// Message to a Notifier and get back ok-or-error; they never learn which
// transport carried it.
package notify

import "context"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one outbound notification. Email uses To+Subject+Body;
// SMS uses Phone+Body.
type Message struct {
	ID      string
	To      string
	Phone   string
	Subject string
	Body    string
}

// Result reports a single dispatch attempt. Failures never propagate as
// request errors; they ride along as response metadata.
type Result struct {
	Channel Channel `json:"channel"`
	OK      bool    `json:"ok"`
	Info    string  `json:"info,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Notifier sends one message over one transport.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Channel() Channel
}
