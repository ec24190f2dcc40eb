package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	AppName            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectAttempts bounds startup pings while the database comes up.
	ConnectAttempts int
}

// MinIOConfig holds settings for an S3-compatible object store.
// The same shape describes the primary store (MinIO) and the external
// store reached by the deletion intermediary (AWS S3).
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// EnsureBucket makes the client verify the bucket at startup and create it when missing.
	EnsureBucket bool
}

// IntermediaryConfig describes how the API reaches the storage-deletion function.
type IntermediaryConfig struct {
	URL         string
	APIKey      string
	TimeoutSec  int
	MaxAttempts int
}

// BulkConfig tunes bulk download/delete execution.
type BulkConfig struct {
	// FetchConcurrency bounds parallel downloads; 0 means unbounded.
	FetchConcurrency int
	// RemoveConcurrency bounds parallel intermediary calls; 0 means unbounded.
	RemoveConcurrency int
	CallTimeoutSec    int
	SignedURLTTLSec   int
	FetchMaxBytes     int64
}

// ViewConfig controls the lifetime of collection view sessions.
type ViewConfig struct {
	IdleTTLSec       int
	SweepIntervalSec int
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the API.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	Log          LogConfig
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Intermediary IntermediaryConfig
	Bulk         BulkConfig
	View         ViewConfig
}

// DeleterConfig is the configuration of the storage-deletion intermediary binary.
type DeleterConfig struct {
	Port string
	Log  LogConfig
	S3   MinIOConfig
	// APIKey, when set, must be presented by callers as a bearer token.
	APIKey string
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Log:     loadLog(),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			AppName:            getEnv("DB_APP_NAME", "photoapi"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:     getEnv("MINIO_ENDPOINT", ""),
			AccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:    getEnv("MINIO_SECRET_KEY", ""),
			Bucket:       getEnv("MINIO_BUCKET", "collection-photos"),
			Region:       getEnv("MINIO_REGION", ""),
			UseSSL:       getEnvBool("MINIO_USE_SSL", false),
			EnsureBucket: getEnvBool("MINIO_ENSURE_BUCKET", true),
		},
		Intermediary: IntermediaryConfig{
			URL:         getEnv("INTERMEDIARY_URL", ""),
			APIKey:      getEnv("INTERMEDIARY_API_KEY", ""),
			TimeoutSec:  getEnvInt("INTERMEDIARY_TIMEOUT_SEC", 15),
			MaxAttempts: getEnvInt("INTERMEDIARY_MAX_ATTEMPTS", 1),
		},
		Bulk: BulkConfig{
			FetchConcurrency:  getEnvInt("BULK_FETCH_CONCURRENCY", 0),
			RemoveConcurrency: getEnvInt("BULK_REMOVE_CONCURRENCY", 0),
			CallTimeoutSec:    getEnvInt("BULK_CALL_TIMEOUT_SEC", 30),
			SignedURLTTLSec:   getEnvInt("SIGNED_URL_TTL_SEC", 3600),
			FetchMaxBytes:     getEnvInt64("FETCH_MAX_BYTES", 50<<20),
		},
		View: ViewConfig{
			IdleTTLSec:       getEnvInt("VIEW_IDLE_TTL_SEC", 1800),
			SweepIntervalSec: getEnvInt("VIEW_SWEEP_INTERVAL_SEC", 60),
		},
	}
}

// LoadDeleter reads the intermediary configuration. Variable names follow the
// AWS conventions the external store credentials are usually provisioned with.
func LoadDeleter() *DeleterConfig {
	return &DeleterConfig{
		Port:   getEnv("DELETER_PORT", "8090"),
		Log:    loadLog(),
		APIKey: getEnv("DELETER_API_KEY", ""),
		S3: MinIOConfig{
			Endpoint:  getEnv("S3_ENDPOINT", "s3.amazonaws.com"),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:    getEnv("AWS_BUCKET_NAME", ""),
			Region:    getEnv("AWS_REGION", "us-east-1"),
			UseSSL:    getEnvBool("S3_USE_SSL", true),
		},
	}
}

// Duration converts a seconds setting into a time.Duration.
func Duration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

func loadLog() LogConfig {
	return LogConfig{
		Level:    getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
