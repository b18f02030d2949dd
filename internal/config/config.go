package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Listing sources
const (
	ListingAuto  = "auto"
	ListingTop   = "top"
	ListingTable = "table"
)

// Environment variables read by Load
const (
	EnvUpdateInterval = "MEMWATCH_UPDATE_INTERVAL"
	EnvTopCount       = "MEMWATCH_TOP_COUNT"
	EnvListTimeout    = "MEMWATCH_LIST_TIMEOUT"
	EnvTopPath        = "MEMWATCH_TOP_PATH"
	EnvListingSource  = "MEMWATCH_LISTING_SOURCE"
	EnvLogLevel       = "MEMWATCH_LOG_LEVEL"
	EnvLogFile        = "MEMWATCH_LOG_FILE"
	EnvHTTPAddr       = "MEMWATCH_HTTP_ADDR"
)

// Defaults
const (
	DefaultUpdateInterval = 1
	DefaultTopCount       = 5
	DefaultListTimeout    = 5 * time.Second
	DefaultTopPath        = "/usr/bin/top"
	DefaultLogLevel       = "info"
)

// Config holds the monitor settings
type Config struct {
	// UpdateInterval is in whole seconds
	UpdateInterval int
	TopCount       int
	ListTimeout    time.Duration
	TopPath        string
	ListingSource  string
	LogLevel       string
	LogFile        string
	// HTTPAddr empty disables the HTTP server
	HTTPAddr string
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		UpdateInterval: DefaultUpdateInterval,
		TopCount:       DefaultTopCount,
		ListTimeout:    DefaultListTimeout,
		TopPath:        DefaultTopPath,
		ListingSource:  ListingAuto,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads an optional .env file, then the MEMWATCH_* variables. Unset or
// unparseable variables keep their defaults.
func Load(logger *zap.Logger, filenames ...string) *Config {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := godotenv.Load(filenames...); err != nil {
		logger.Debug("no .env file loaded, using environment variables", zap.Error(err))
	}

	cfg := Default()
	cfg.UpdateInterval = getEnvInt(EnvUpdateInterval, cfg.UpdateInterval)
	cfg.TopCount = getEnvInt(EnvTopCount, cfg.TopCount)
	cfg.ListTimeout = getEnvDuration(EnvListTimeout, cfg.ListTimeout)
	cfg.TopPath = getEnv(EnvTopPath, cfg.TopPath)
	cfg.ListingSource = getEnv(EnvListingSource, cfg.ListingSource)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = getEnv(EnvLogFile, cfg.LogFile)
	cfg.HTTPAddr = getEnv(EnvHTTPAddr, cfg.HTTPAddr)

	return cfg
}

// Validate rejects settings the reader cannot run with
func (c *Config) Validate() error {
	if c.UpdateInterval < 1 {
		return errors.Wrapf(ErrInvalidUpdateInterval, "got %d", c.UpdateInterval)
	}
	if c.TopCount < 1 {
		return errors.Wrapf(ErrInvalidTopCount, "got %d", c.TopCount)
	}
	if c.ListTimeout <= 0 {
		return errors.Wrapf(ErrInvalidListTimeout, "got %s", c.ListTimeout)
	}

	switch c.ListingSource {
	case ListingAuto, ListingTable:
	case ListingTop:
		if c.TopPath == "" {
			return ErrEmptyTopPath
		}
	default:
		return errors.Wrapf(ErrInvalidListingSource, "got %q", c.ListingSource)
	}

	return nil
}

// Interval returns UpdateInterval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.UpdateInterval) * time.Second
}

// ResolvedListingSource maps auto to the platform's listing source
func (c *Config) ResolvedListingSource() string {
	if c.ListingSource != ListingAuto {
		return c.ListingSource
	}
	if runtime.GOOS == "darwin" {
		return ListingTop
	}
	return ListingTable
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

// getEnvDuration accepts Go durations ("750ms") or plain seconds ("5")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
