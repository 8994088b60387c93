package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const defaultDarwinURL = "https://lite.realtime.nationalrail.co.uk/OpenLDBWS/ldb9.asmx"

// History backends
const (
	HistoryBackendPostgres = "postgres"
	HistoryBackendRedis    = "redis"
	HistoryBackendMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken        string
	AdminTelegramID      int64
	DatabaseURL          string
	RedisAddr            string
	HistoryBackend       string
	HistoryRetention     time.Duration
	TickInterval         time.Duration
	CallTimeout          time.Duration
	CycleTimeout         time.Duration
	DedupHorizon         time.Duration
	MaxConcurrentLookups int
	Timezone             string
	DarwinToken          string
	DarwinURL            string
	WatchesFile          string
	LogLevel             string
	Environment          string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.DarwinToken = os.Getenv("DARWIN_TOKEN")
	if cfg.DarwinToken == "" {
		return nil, fmt.Errorf("DARWIN_TOKEN is not set")
	}
	cfg.DarwinURL = envOr("DARWIN_URL", defaultDarwinURL)

	// The dedup horizon has no sensible default; it must be chosen against the tick interval.
	if os.Getenv("DEDUP_HORIZON") == "" {
		return nil, fmt.Errorf("DEDUP_HORIZON is not set")
	}
	if cfg.DedupHorizon, err = durationEnv("DEDUP_HORIZON", 0); err != nil {
		return nil, err
	}

	if cfg.TickInterval, err = durationEnv("TICK_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.TickInterval < time.Second {
		return nil, fmt.Errorf("TICK_INTERVAL must be at least 1s")
	}
	if cfg.CallTimeout, err = durationEnv("CALL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = durationEnv("CYCLE_TIMEOUT", cfg.TickInterval); err != nil {
		return nil, err
	}
	if cfg.HistoryRetention, err = durationEnv("HISTORY_RETENTION", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HistoryRetention < cfg.DedupHorizon {
		return nil, fmt.Errorf("HISTORY_RETENTION must not be shorter than DEDUP_HORIZON")
	}

	cfg.MaxConcurrentLookups = 4
	if v := os.Getenv("MAX_CONCURRENT_LOOKUPS"); v != "" {
		cfg.MaxConcurrentLookups, err = strconv.Atoi(v)
		if err != nil || cfg.MaxConcurrentLookups <= 0 {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_LOOKUPS: %q", v)
		}
	}

	cfg.Timezone = envOr("TIMEZONE", "Europe/London")
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.HistoryBackend = strings.ToLower(envOr("HISTORY_BACKEND", HistoryBackendPostgres))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	switch cfg.HistoryBackend {
	case HistoryBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case HistoryBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is not set")
		}
	case HistoryBackendMemory:
	default:
		return nil, fmt.Errorf("unknown HISTORY_BACKEND %q", cfg.HistoryBackend)
	}

	cfg.WatchesFile = os.Getenv("WATCHES_FILE")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// Location returns the configured timezone. Load has already validated it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
