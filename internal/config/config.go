package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort           string
	AppEnv            string
	DatabaseURL       string
	StorageDir        string
	PollInterval      time.Duration
	AdminPassphrase   string
	JWTSecret         string
	TokenExpires      time.Duration
	TelegramBotToken  string
	TelegramAdminChat string
	RedisURL          string
	SessionTTL        time.Duration
	AlarmInterval     time.Duration
	LoginRateLimit    float64
	LoginBurst        int
}

// Load reads environment variables, after an optional .env file, and
// returns a populated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		StorageDir:        getEnv("STORAGE_DIR", "data"),
		PollInterval:      getEnvInt("POLL_INTERVAL_MS", 2000) * time.Millisecond,
		AdminPassphrase:   getEnv("ADMIN_PASSPHRASE", "admin123"),
		JWTSecret:         getEnv("JWT_SECRET", "flashpizza-dev-secret"),
		TokenExpires:      getEnvInt("JWT_TTL_HOURS", 24) * time.Hour,
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		SessionTTL:        getEnvInt("SESSION_TTL_HOURS", 24) * time.Hour,
		AlarmInterval:     getEnvInt("ALARM_INTERVAL_MS", 3000) * time.Millisecond,
		LoginRateLimit:    getEnvFloat("LOGIN_RATE_PER_SEC", 0.2),
		LoginBurst:        int(getEnvInt("LOGIN_BURST", 5)),
	}

	if cfg.AppPort == "" {
		return nil, errors.New("APP_PORT must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.AdminPassphrase == "" {
		return nil, errors.New("ADMIN_PASSPHRASE must be set")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("POLL_INTERVAL_MS must be positive")
	}
	return cfg, nil
}

// Realtime reports whether DATABASE_URL points at a Postgres server.
func (c *Config) Realtime() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Production reports whether the app runs with production logging.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
