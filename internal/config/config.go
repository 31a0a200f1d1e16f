// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/yelinaung/budget-bot/internal/telemetry"
)

// Bot run modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// DefaultTimezone defines month boundaries when TIMEZONE is unset.
const DefaultTimezone = "Asia/Almaty"

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	LogLevel         string
	LogFormat        string

	// Timezone decides where a month starts and ends.
	Timezone string

	// AllowedUserIDs and AllowedUsernames restrict access. Both empty means everyone.
	AllowedUserIDs   []int64
	AllowedUsernames []string

	BotMode           string
	WebhookURL        string
	WebhookListenAddr string
	WebhookSecret     string

	DailyReminderEnabled bool
	ReminderHour         int

	OTelExporter string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         envOr("LOG_FORMAT", "console"),
		Timezone:          DefaultTimezone,
		BotMode:           envOr("BOT_MODE", ModePolling),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookListenAddr: envOr("WEBHOOK_LISTEN_ADDR", ":8080"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		OTelExporter:      envOr("OTEL_EXPORTER", telemetry.ExporterNone),
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}

	cfg.DailyReminderEnabled = os.Getenv("DAILY_REMINDER_ENABLED") == "true"
	cfg.ReminderHour = 20
	if hourStr := os.Getenv("REMINDER_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.ReminderHour = h
		}
	}

	for idStr := range strings.SplitSeq(os.Getenv("ALLOWED_USER_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		cfg.AllowedUserIDs = append(cfg.AllowedUserIDs, id)
	}

	for username := range strings.SplitSeq(os.Getenv("ALLOWED_USERNAMES"), ",") {
		username = strings.TrimPrefix(strings.TrimSpace(username), "@")
		if username == "" {
			continue
		}
		cfg.AllowedUsernames = append(cfg.AllowedUsernames, username)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	switch c.BotMode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			errs = append(errs, "WEBHOOK_URL is required in webhook mode")
		}
		if c.WebhookSecret == "" {
			errs = append(errs, "WEBHOOK_SECRET is required in webhook mode")
		}
	default:
		errs = append(errs, fmt.Sprintf("BOT_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, c.BotMode))
	}

	switch c.OTelExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterOTLPGRPC, telemetry.ExporterOTLPHTTP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not supported", c.OTelExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsUserAllowed checks a Telegram user against the allow-lists.
// With no allow-list configured every user is allowed.
func (c *Config) IsUserAllowed(userID int64, username string) bool {
	if len(c.AllowedUserIDs) == 0 && len(c.AllowedUsernames) == 0 {
		return true
	}

	if slices.Contains(c.AllowedUserIDs, userID) {
		return true
	}

	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, allowed := range c.AllowedUsernames {
			if strings.EqualFold(allowed, username) {
				return true
			}
		}
	}

	return false
}
