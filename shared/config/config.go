package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SubmitMode selects how the gateway submits bookings
type SubmitMode string

const (
	SubmitDirect   SubmitMode = "direct"
	SubmitTemporal SubmitMode = "temporal"
)

type Config struct {
	Port            string
	BookingAPIURL   string
	BookingAPIToken string
	BookingTimeout  time.Duration
	TemporalHost    string
	TaskQueue       string
	SubmitMode      SubmitMode
	SessionTTL      time.Duration
	Environment     string
	LogLevel        string
}

// Load reads the configuration from the environment. Values from the given
// .env files are applied first; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:            getEnv("API_PORT", "8080"),
		BookingAPIURL:   getEnv("BOOKING_API_URL", "http://localhost:8000/api"),
		BookingAPIToken: os.Getenv("BOOKING_API_TOKEN"),
		TemporalHost:    getEnv("TEMPORAL_HOST", "localhost:7233"),
		TaskQueue:       getEnv("TASK_QUEUE", "travel-booking-queue"),
		SubmitMode:      SubmitMode(getEnv("SUBMIT_MODE", string(SubmitDirect))),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.BookingTimeout, err = getDuration("BOOKING_API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	switch cfg.SubmitMode {
	case SubmitDirect, SubmitTemporal:
	default:
		return nil, fmt.Errorf("SUBMIT_MODE must be %q or %q, got %q", SubmitDirect, SubmitTemporal, cfg.SubmitMode)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("45s") and plain seconds ("45")
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
