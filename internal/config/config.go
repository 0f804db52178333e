// Package config loads service configuration from the environment, with a
// .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dukerupert/sindri/internal/domain"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	DatabaseURL string
	NatsURL     string

	StripeSecretKey string
	Currency        string

	ReturnWindowDays     int
	AllowCancelAfterShip bool

	MetricsNamespace string
}

// Load reads configuration from the environment. A missing .env file is
// fine; deployed environments inject variables directly.
func Load() (*Config, error) {
	const op = "config.load"

	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		NatsURL:              getEnv("NATS_URL", "nats://localhost:4222"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		Currency:             getEnv("CURRENCY", "inr"),
		ReturnWindowDays:     getEnvInt("RETURN_WINDOW_DAYS", 7),
		AllowCancelAfterShip: getEnvBool("ALLOW_CANCEL_AFTER_SHIP", false),
		MetricsNamespace:     getEnv("METRICS_NAMESPACE", "sindri"),
	}

	if cfg.DatabaseURL == "" {
		return nil, domain.Invalid(op, "DATABASE_URL is required")
	}
	if cfg.ReturnWindowDays <= 0 {
		return nil, domain.Invalid(op, "RETURN_WINDOW_DAYS must be positive")
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
