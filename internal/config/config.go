package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	Port          string
	DatabaseURL   string // empty runs on the in-memory store
	AMQPURL       string // empty processes events in-process
	OpenAI        OpenAIConfig
	Breaker       BreakerConfig
	Mail          MailConfig
	WhatsApp      WhatsAppConfig
	ActionTimeout time.Duration
	// SweepSchedule is a 5-field cron expression or descriptor.
	SweepSchedule string
	// SweepOnStart runs one sweep at boot. Off by default since every
	// replica would notify every dealer on each restart.
	SweepOnStart    bool
	InlineSweepRate float64
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type BreakerConfig struct {
	Failures    uint32
	OpenTimeout time.Duration
}

type WhatsAppConfig struct {
	AccessToken string
	PhoneID     string
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AppURL   string // dashboard origin for links in emails
}

// Load reads the environment, with a .env file loaded first outside
// production.
func Load() (Config, error) {
	if getEnv("ENV", "development") != "production" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AMQPURL:     getEnv("AMQP_URL", ""),
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout: getEnvDuration("AI_TIMEOUT", 15*time.Second),
		},
		Breaker: BreakerConfig{
			Failures:    uint32(getEnvInt("BREAKER_FAILURES", 5)),
			OpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 60*time.Second),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnvInt("MAIL_PORT", 587),
			User:     getEnv("MAIL_USER", ""),
			Password: getEnv("MAIL_PASS", ""),
			From:     getEnv("MAIL_FROM", ""),
			AppURL:   getEnv("APP_BASE_URL", ""),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken: getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
		},
		ActionTimeout:   getEnvDuration("ACTION_TIMEOUT", 30*time.Second),
		SweepSchedule:   getEnv("SWEEP_SCHEDULE", "0 9 * * *"),
		SweepOnStart:    getEnvBool("SWEEP_ON_START", false),
		InlineSweepRate: getEnvFloat("INLINE_SWEEP_RATE", 0),
	}

	if cfg.InlineSweepRate < 0 || cfg.InlineSweepRate > 1 {
		return Config{}, fmt.Errorf("INLINE_SWEEP_RATE must be between 0 and 1, got %v", cfg.InlineSweepRate)
	}
	if cfg.Breaker.Failures == 0 {
		return Config{}, fmt.Errorf("BREAKER_FAILURES must be positive")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}
