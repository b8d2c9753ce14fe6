package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"epidash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Server   ServerConfig
	State    StateConfig
	Database DatabaseConfig
	Blob     BlobConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// DataConfig describes where the case records come from
type DataConfig struct {
	Source  string
	Timeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// State backends
const (
	StateBackendBlob = "blob"
	StateBackendSQL  = "sql"
)

// StateConfig selects where the dashboard selection is persisted
type StateConfig struct {
	Backend string
	Key     string
}

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds database connection settings for the sql state backend
type DatabaseConfig struct {
	Driver string
	URL    string
}

// Blob drivers
const (
	BlobDriverFS     = "fs"
	BlobDriverMemory = "memory"
	BlobDriverS3     = "s3"
)

// BlobConfig holds blob store settings for the blob state backend
type BlobConfig struct {
	Driver      string
	FSRoot      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:     *loadDataConfig(),
		Server:   *loadServerConfig(),
		State:    *loadStateConfig(),
		Database: *loadDatabaseConfig(),
		Blob:     *loadBlobConfig(),
		Log:      LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
		Metrics:  MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source:  getEnvOrDefault("DATA_SOURCE", "./TB_Data.csv"),
		Timeout: getEnvDurationOrDefault("DATA_TIMEOUT", 30*time.Second),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadStateConfig() *StateConfig {
	return &StateConfig{
		Backend: strings.ToLower(getEnvOrDefault("STATE_BACKEND", StateBackendBlob)),
		Key:     getEnvOrDefault("STATE_KEY", "dashboardState"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		URL:    getEnvOrDefault("DATABASE_URL", "file:epidash.db"),
	}
}

func loadBlobConfig() *BlobConfig {
	return &BlobConfig{
		Driver:      strings.ToLower(getEnvOrDefault("BLOB_DRIVER", BlobDriverFS)),
		FSRoot:      getEnvOrDefault("BLOB_FS_ROOT", "./.epidash"),
		S3Bucket:    getEnvOrDefault("BLOB_S3_BUCKET", ""),
		S3Region:    getEnvOrDefault("BLOB_S3_REGION", "us-east-1"),
		S3Endpoint:  getEnvOrDefault("BLOB_S3_ENDPOINT", ""),
		S3PathStyle: getEnvBoolOrDefault("BLOB_S3_PATH_STYLE", false),
	}
}

// Validate rejects unknown backends and drivers and missing required settings
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Source) == "" {
		return errors.ConfigInvalid("DATA_SOURCE is required")
	}
	if c.Data.Timeout <= 0 {
		return errors.ConfigInvalid("DATA_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.State.Key) == "" {
		return errors.ConfigInvalid("STATE_KEY is required")
	}

	switch c.State.Backend {
	case StateBackendBlob:
		return c.validateBlob()
	case StateBackendSQL:
		return c.validateDatabase()
	default:
		return errors.ConfigInvalid("unknown STATE_BACKEND " + c.State.Backend)
	}
}

func (c *Config) validateBlob() error {
	switch c.Blob.Driver {
	case BlobDriverFS:
		if c.Blob.FSRoot == "" {
			return errors.ConfigInvalid("BLOB_FS_ROOT is required for the fs blob driver")
		}
	case BlobDriverMemory:
	case BlobDriverS3:
		if c.Blob.S3Bucket == "" {
			return errors.ConfigInvalid("BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	default:
		return errors.ConfigInvalid("unknown BLOB_DRIVER " + c.Blob.Driver)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.ConfigInvalid("unknown DATABASE_DRIVER " + c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required for the sql state backend")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
