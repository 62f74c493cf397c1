package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Transfer feed
	Feed FeedConfig

	// Reconciliation
	Reconcile ReconcileConfig
}

// FeedConfig holds configuration for the transfer feed source
type FeedConfig struct {
	BaseURL        string
	WatchAddress   string
	TokenSymbol    string
	PageSize       int
	PageDelay      time.Duration
	RequestTimeout time.Duration
}

// ReconcileConfig holds configuration for the reconciliation worker
type ReconcileConfig struct {
	IdleInterval   time.Duration
	MatchTolerance decimal.Decimal
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	tolerance, err := decimal.NewFromString(getEnv("MATCH_TOLERANCE", "2"))
	if err != nil {
		return nil, fmt.Errorf("MATCH_TOLERANCE must be a decimal: %w", err)
	}

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitOrigins(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:         getEnv("ENV", "development"),
		Feed: FeedConfig{
			BaseURL:        getEnv("FEED_BASE_URL", "https://nile.trongrid.io"),
			WatchAddress:   getEnv("WATCH_ADDRESS", ""),
			TokenSymbol:    getEnv("TOKEN_SYMBOL", "USDT"),
			PageSize:       getEnvInt("FEED_PAGE_SIZE", 10),
			PageDelay:      getEnvDurationMs("FEED_PAGE_DELAY_MS", 500),
			RequestTimeout: getEnvDurationMs("FEED_REQUEST_TIMEOUT_MS", 15000),
		},
		Reconcile: ReconcileConfig{
			IdleInterval:   getEnvDurationMs("RECONCILE_IDLE_INTERVAL_MS", 10000),
			MatchTolerance: tolerance,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Feed.WatchAddress == "" {
		return fmt.Errorf("WATCH_ADDRESS is required")
	}
	if c.Feed.PageSize <= 0 {
		return fmt.Errorf("FEED_PAGE_SIZE must be positive")
	}
	if c.Reconcile.MatchTolerance.IsNegative() {
		return fmt.Errorf("MATCH_TOLERANCE must not be negative")
	}
	return nil
}

// splitOrigins splits a comma-separated origin list, trimming whitespace
// so "a, b" does not produce the never-matching origin " b".
func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
