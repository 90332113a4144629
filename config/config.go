package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting.
type Config struct {
	GO_ENV string
	PORT   string

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_SSLMODE  string

	SESSION_JWT_SECRET string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	CLERK_SECRET_KEY     string
	CLERK_WEBHOOK_SECRET string

	CURRENCY     string
	FRONTEND_URL string

	REDIS_URL string

	ALLOWED_ORIGINS string

	// Hours a purchase may stay pending before the expiry sweep.
	PENDING_PURCHASE_TTL_HOURS int

	CRON_ENABLED bool
}

// LoadENV loads the .env file when present. Missing files are fine in
// production where the environment is injected directly.
func LoadENV() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// Get reads the full configuration from the environment.
func Get() *Config {
	return &Config{
		GO_ENV: getEnv("GO_ENV", "development"),
		PORT:   getEnv("PORT", "8080"),

		DB_HOST:     getEnv("DB_HOST", "localhost"),
		DB_PORT:     getEnv("DB_PORT", "5432"),
		DB_USER:     getEnv("DB_USER", "postgres"),
		DB_PASSWORD: getEnv("DB_PASSWORD", ""),
		DB_NAME:     getEnv("DB_NAME", "edemy"),
		DB_SSLMODE:  getEnv("DB_SSLMODE", "disable"),

		SESSION_JWT_SECRET: getEnv("SESSION_JWT_SECRET", ""),

		STRIPE_SECRET_KEY:     getEnv("STRIPE_SECRET_KEY", ""),
		STRIPE_WEBHOOK_SECRET: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		CLERK_SECRET_KEY:     getEnv("CLERK_SECRET_KEY", ""),
		CLERK_WEBHOOK_SECRET: getEnv("CLERK_WEBHOOK_SECRET", ""),

		CURRENCY:     getEnv("CURRENCY", "usd"),
		FRONTEND_URL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		REDIS_URL: getEnv("REDIS_URL", ""),

		ALLOWED_ORIGINS: getEnv("ALLOWED_ORIGINS", "*"),

		PENDING_PURCHASE_TTL_HOURS: getEnvInt("PENDING_PURCHASE_TTL_HOURS", 24),

		CRON_ENABLED: getEnv("CRON_ENABLED", "true") != "false",
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DB_HOST, c.DB_USER, c.DB_PASSWORD, c.DB_NAME, c.DB_PORT, c.DB_SSLMODE)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
