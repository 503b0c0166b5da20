package notify

import (
	"context"
	"fmt"
	"strings"

	"foodhub/internal/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers messages through the Twilio REST API.
type SMSSender struct {
	client      *twilio.RestClient
	from        string
	countryCode string
}

func NewSMSSender(cfg config.TwilioConfig, countryCode string) (*SMSSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return nil, fmt.Errorf("missing twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &SMSSender{client: client, from: cfg.FromNumber, countryCode: countryCode}, nil
}

func (s *SMSSender) Channel() Channel { return ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	to := FormatE164(msg.Phone, s.countryCode)
	if to == "" {
		return fmt.Errorf("message has no usable phone number")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(msg.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	return nil
}

// FormatE164 prefixes digit-only numbers with the default country code.
// Numbers longer than 10 digits are assumed to already carry one.
func FormatE164(digits, countryCode string) string {
	if digits == "" {
		return ""
	}
	cc := strings.TrimPrefix(countryCode, "+")
	if len(digits) > 10 {
		return "+" + digits
	}
	return "+" + cc + digits
}
