package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/test.db
admin:
  api_key: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 330, cfg.Booking.TimezoneOffsetMinutes)
	assert.Equal(t, "91", cfg.Notifications.DefaultCountryCode)
	assert.Equal(t, "no-reply@example.com", cfg.Notifications.From)
	assert.Equal(t, float64(500), cfg.Payments.DefaultOnlineAmount)
	assert.Equal(t, 587, cfg.Notifications.SMTP.Port)
	assert.False(t, cfg.Notifications.DevMode, "dev mode never defaults on")
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_ADMIN_KEY", "from-env")
	path := writeConfig(t, `
database:
  path: data/test.db
admin:
  api_key: ${TEST_ADMIN_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.APIKey)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	_, err := Load(writeConfig(t, `
admin:
  api_key: secret
`))
	assert.ErrorContains(t, err, "database path")

	_, err = Load(writeConfig(t, `
database:
  path: data/test.db
`))
	assert.ErrorContains(t, err, "admin api key")

	_, err = Load(writeConfig(t, `
database:
  path: data/test.db
admin:
  api_key: secret
backup:
  enabled: true
`))
	assert.ErrorContains(t, err, "storage_path")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
