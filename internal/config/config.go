package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	LogLevel        string
	LogFormat       string
	Port            string
	PrometheusPort  string
	FrontendURL     string
	RedisURL        string
	SummaryCacheTTL time.Duration
	InvitationTTL   time.Duration
	TelegramToken   string
	MigrationsPath  string
	CookieSecure    bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		Port:           getEnvOrDefault("PORT", "8080"),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		FrontendURL:    getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		RedisURL:       os.Getenv("REDIS_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}

	var err error
	if cfg.SummaryCacheTTL, err = getDurationOrDefault("SUMMARY_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.InvitationTTL, err = getDurationOrDefault("INVITATION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if raw := os.Getenv("COOKIE_SECURE"); raw != "" {
		if cfg.CookieSecure, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("COOKIE_SECURE must be a boolean: %w", err)
		}
	}

	// Required environment variables
	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
