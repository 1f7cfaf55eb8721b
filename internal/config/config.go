// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Alignment policies for combining per-ticker price series.
const (
	AlignmentIntersection = "intersection"
	AlignmentIndex        = "index"
)

// DefaultRequestTimeout bounds a whole HTTP request, queued fetches included.
const DefaultRequestTimeout = 60 * time.Second

// Config holds application configuration
type Config struct {
	DataDir  string // Directory holding client_data.db (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	BenchmarkSymbol  string        // Reference index, never taken from requests
	RiskFreeRate     float64       // Annual, as decimal
	AlignmentPolicy  string        // intersection | index
	FetchTimeout     time.Duration // Per-symbol upstream deadline
	FetchConcurrency int
	RequestTimeout   time.Duration // Whole-request deadline; must exceed FetchTimeout

	YahooBaseURL       string
	AlphaVantageAPIKey string // Empty disables insider and financial statement data

	PriceCacheEnabled    bool
	CacheCleanupSchedule string // cron spec with seconds field
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:              dataDir,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnvAsInt("PORT", 5000),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		BenchmarkSymbol:      strings.ToUpper(getEnv("BENCHMARK_SYMBOL", "^GSPC")),
		RiskFreeRate:         getEnvAsFloat("RISK_FREE_RATE", 0.02),
		AlignmentPolicy:      strings.ToLower(getEnv("ALIGNMENT_POLICY", AlignmentIntersection)),
		FetchTimeout:         getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchConcurrency:     getEnvAsInt("FETCH_CONCURRENCY", 4),
		RequestTimeout:       getEnvAsDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		YahooBaseURL:         getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		AlphaVantageAPIKey:   getEnv("ALPHAVANTAGE_API_KEY", ""),
		PriceCacheEnabled:    getEnvAsBool("PRICE_CACHE_ENABLED", true),
		CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "0 0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.PriceCacheEnabled {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks that configured values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.BenchmarkSymbol == "" {
		return fmt.Errorf("BENCHMARK_SYMBOL must not be empty")
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return fmt.Errorf("RISK_FREE_RATE must be a finite number")
	}
	switch c.AlignmentPolicy {
	case AlignmentIntersection, AlignmentIndex:
	default:
		return fmt.Errorf("unknown ALIGNMENT_POLICY %q (want %q or %q)", c.AlignmentPolicy, AlignmentIntersection, AlignmentIndex)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive")
	}
	if c.RequestTimeout <= c.FetchTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must be longer than FETCH_TIMEOUT (%s)", c.RequestTimeout, c.FetchTimeout)
	}
	return nil
}

// ClientDataDBPath is the location of the upstream response cache.
func (c *Config) ClientDataDBPath() string {
	return filepath.Join(c.DataDir, "client_data.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("10s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
