package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"opsdash/internal/errors"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Import   ImportConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// StoreConfig holds the dataset store and its persistence budget
type StoreConfig struct {
	Backend     string
	Dir         string
	Key         string
	BudgetBytes int
	QuotaBytes  int64

	PersistMaxRows    int
	PersistMaxSamples int
	AddMaxRows        int
	AddMaxSamples     int
	MinimalInsights   int
}

// ImportConfig holds upload settings
type ImportConfig struct {
	MaxUploadBytes int64
	SheetName      string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: *loadDatabaseConfig(),
		Store:    *loadStoreConfig(),
		Import:   *loadImportConfig(),
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:          os.Getenv("DATABASE_URL"),
		MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 5),
	}
}

func loadStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend:           strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendMemory)),
		Dir:               getEnvOrDefault("STORE_DIR", "./data"),
		Key:               getEnvOrDefault("STORE_KEY", "opsdash_datasets"),
		BudgetBytes:       getEnvIntOrDefault("STORE_BUDGET_BYTES", 4<<20),
		QuotaBytes:        int64(getEnvIntOrDefault("STORE_QUOTA_BYTES", 5<<20)),
		PersistMaxRows:    getEnvIntOrDefault("PERSIST_MAX_ROWS", 100),
		PersistMaxSamples: getEnvIntOrDefault("PERSIST_MAX_SAMPLES", 3),
		AddMaxRows:        getEnvIntOrDefault("ADD_MAX_ROWS", 50),
		AddMaxSamples:     getEnvIntOrDefault("ADD_MAX_SAMPLES", 2),
		MinimalInsights:   getEnvIntOrDefault("MINIMAL_INSIGHTS", 2),
	}
}

func loadImportConfig() *ImportConfig {
	return &ImportConfig{
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 50<<20)),
		SheetName:      getEnvOrDefault("XLSX_SHEET", ""),
	}
}

func validateConfig(config *Config) error {
	switch config.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendPostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown STORE_BACKEND %q", config.Store.Backend))
	}
	if config.Store.BudgetBytes <= 0 {
		return errors.ConfigInvalid("STORE_BUDGET_BYTES must be positive")
	}
	if config.Store.Key == "" {
		return errors.ConfigInvalid("STORE_KEY is required")
	}
	if config.Store.PersistMaxRows < 0 || config.Store.AddMaxRows < 0 {
		return errors.ConfigInvalid("row caps must not be negative")
	}
	if config.Store.PersistMaxSamples < 0 || config.Store.AddMaxSamples < 0 {
		return errors.ConfigInvalid("sample caps must not be negative")
	}
	if config.Store.MinimalInsights < 0 {
		return errors.ConfigInvalid("MINIMAL_INSIGHTS must not be negative")
	}
	if config.Import.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
