package notify

import (
	"testing"

	"foodhub/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestFormatE164(t *testing.T) {
	// 10 digits or fewer get the default country code.
	assert.Equal(t, "+919876543210", FormatE164("9876543210", "91"))
	assert.Equal(t, "+919876543210", FormatE164("9876543210", "+91"))

	// Longer numbers are assumed to already carry one.
	assert.Equal(t, "+919876543210", FormatE164("919876543210", "91"))

	assert.Equal(t, "", FormatE164("", "91"))
}

func TestNewSMSSenderRequiresCredentials(t *testing.T) {
	_, err := NewSMSSender(config.TwilioConfig{}, "91")
	assert.Error(t, err)

	_, err = NewSMSSender(config.TwilioConfig{
		AccountSID: "AC123", AuthToken: "token", FromNumber: "+15550001111",
	}, "91")
	assert.NoError(t, err)
}
