package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"tabstat/internal/errors"
)

// Backends the embedded and SQL stores support.
const (
	BackendSQLite   = "sqlite"
	BackendDuckDB   = "duckdb"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Store  StoreConfig
	Output OutputConfig
	Batch  BatchConfig
	Log    LogConfig
}

// StoreConfig selects where designs read their data from
type StoreConfig struct {
	Backend string
	DSN     string
}

// OutputConfig holds rendering defaults
type OutputConfig struct {
	StylesDir     string
	Dir           string
	DecimalPoints int
}

// BatchConfig holds batch execution settings
type BatchConfig struct {
	Concurrency int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment, after an optional .env file, and validates it
func Load() (*Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the current environment only
func FromEnv() (*Config, error) {
	config := &Config{
		Store:  *loadStoreConfig(),
		Output: *loadOutputConfig(),
		Batch:  BatchConfig{Concurrency: getEnvIntOrDefault("TABSTAT_BATCH_CONCURRENCY", 4)},
		Log:    LogConfig{Level: getEnvOrDefault("TABSTAT_LOG_LEVEL", "")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend: strings.ToLower(getEnvOrDefault("TABSTAT_STORE_BACKEND", BackendSQLite)),
		DSN:     getEnvOrDefault("TABSTAT_STORE_DSN", "tabstat.db"),
	}
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		StylesDir:     getEnvOrDefault("TABSTAT_STYLES_DIR", ""),
		Dir:           getEnvOrDefault("TABSTAT_OUTPUT_DIR", "."),
		DecimalPoints: getEnvIntOrDefault("TABSTAT_DECIMAL_POINTS", 3),
	}
}

func validateConfig(config *Config) error {
	switch config.Store.Backend {
	case BackendSQLite, BackendDuckDB, BackendPostgres:
	default:
		return errors.Configuration("unknown store backend " + strconv.Quote(config.Store.Backend))
	}
	if config.Store.DSN == "" {
		return errors.Configuration("store DSN is required")
	}
	if config.Output.DecimalPoints < 0 {
		return errors.Configuration("decimal points cannot be negative")
	}
	if config.Batch.Concurrency < 1 {
		config.Batch.Concurrency = 1
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
