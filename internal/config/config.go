package config

import (
	"errors"
	"fmt"
	"os"

	"foodhub/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Backup        BackupConfig        `yaml:"backup"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
	Admin         AdminConfig         `yaml:"admin"`
	Booking       BookingConfig       `yaml:"booking"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Payments      PaymentsConfig      `yaml:"payments"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type AdminConfig struct {
	APIKey string `yaml:"api_key"`
}

type BookingConfig struct {
	// TimezoneOffsetMinutes is the restaurant's fixed civil zone as an
	// offset from UTC. Booking times are interpreted in this zone, not
	// the server's local zone.
	TimezoneOffsetMinutes int `yaml:"timezone_offset_minutes"`
}

type NotificationsConfig struct {
	// DevMode skips real dispatch and echoes OTP codes in responses.
	// Must be set explicitly; never defaults on.
	DevMode            bool         `yaml:"dev_mode"`
	From               string       `yaml:"from"`
	DefaultCountryCode string       `yaml:"default_country_code"`
	SMTP               SMTPConfig   `yaml:"smtp"`
	Twilio             TwilioConfig `yaml:"twilio"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type PaymentsConfig struct {
	DefaultOnlineAmount float64 `yaml:"default_online_amount"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; values referenced from the YAML via ${VAR}
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Admin.APIKey == "" {
		return errors.New("admin api key is required")
	}

	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		return errors.New("backup.storage_path is required when backup is enabled")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.TimezoneOffsetMinutes == 0 {
		c.Booking.TimezoneOffsetMinutes = models.DefaultTimezoneOffsetMinutes
	}
	if c.Notifications.DefaultCountryCode == "" {
		c.Notifications.DefaultCountryCode = models.DefaultCountryCode
	}
	if c.Notifications.From == "" {
		c.Notifications.From = "no-reply@example.com"
	}
	if c.Payments.DefaultOnlineAmount == 0 {
		c.Payments.DefaultOnlineAmount = models.DefaultOnlineAmount
	}
	if c.Notifications.SMTP.Port == 0 {
		c.Notifications.SMTP.Port = 587
	}
}
