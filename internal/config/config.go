// Package config loads the booking core's runtime configuration from the
// environment. No third-party env-binding library in the retrieval pack
// covers this concern (see DESIGN.md), so this package stays on the
// standard library deliberately rather than reaching for one ungrounded.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full set of knobs cmd/bookingd needs to wire the booking
// core. Everything the spec treats as an external collaborator's concern
// (HTTP bind address, auth secrets, object-store credentials, SMTP) is
// deliberately absent — out of scope per spec §1.
type Config struct {
	// DatabaseURL is a libpq-style connection string passed to pgxpool.
	DatabaseURL string
	// DatabasePoolMaxConns bounds the pgxpool connection pool.
	DatabasePoolMaxConns int32
	// LogLevel is a zap level string ("debug", "info", "warn", "error").
	LogLevel string
	// AutoAdvanceInterval is how often the contract auto-advance job runs.
	AutoAdvanceInterval time.Duration
	// AutoExpireInterval is how often the rent-request auto-expiry job runs.
	AutoExpireInterval time.Duration
	// JobBatchSize bounds how many rows a background job touches per pass
	// (spec §5: "small batches, e.g. 1000 records").
	JobBatchSize int
}

// Default returns the configuration's zero-risk defaults; Load overlays
// environment variables on top of this.
func Default() Config {
	return Config{
		DatabaseURL:          "postgres://localhost:5432/bookingcore",
		DatabasePoolMaxConns: 10,
		LogLevel:             "info",
		AutoAdvanceInterval:  time.Minute,
		AutoExpireInterval:   time.Hour,
		JobBatchSize:         1000,
	}
}

// Load reads Config fields from environment variables, falling back to
// Default() for anything unset.
func Load() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv("BOOKING_DATABASE_URL"); ok && v != "" {
		cfg.DatabaseURL = v
	}
	if v, ok := os.LookupEnv("BOOKING_DATABASE_POOL_MAX_CONNS"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return cfg, fmt.Errorf("config: BOOKING_DATABASE_POOL_MAX_CONNS: %w", err)
		}
		cfg.DatabasePoolMaxConns = int32(n)
	}
	if v, ok := os.LookupEnv("BOOKING_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("BOOKING_AUTO_ADVANCE_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("config: BOOKING_AUTO_ADVANCE_INTERVAL: %w", err)
		}
		cfg.AutoAdvanceInterval = d
	}
	if v, ok := os.LookupEnv("BOOKING_AUTO_EXPIRE_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("config: BOOKING_AUTO_EXPIRE_INTERVAL: %w", err)
		}
		cfg.AutoExpireInterval = d
	}
	if v, ok := os.LookupEnv("BOOKING_JOB_BATCH_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: BOOKING_JOB_BATCH_SIZE: %w", err)
		}
		cfg.JobBatchSize = n
	}

	return cfg, nil
}
