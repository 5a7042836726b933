package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultAPIBaseURL = "https://fyp-project-backend.onrender.com"
)

type Config struct {
	Client   ClientConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Login    LoginConfig
	Receipts ReceiptConfig
	Preview  PreviewConfig
}

type ClientConfig struct {
	APIBaseURL        string
	Env               string
	LogLevel          string
	HTTPTimeout       time.Duration
	EnrichConcurrency int
	PaymentReference  string
}

type StorageConfig struct {
	Driver     string
	SQLitePath string
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// LoginConfig drives the client-side attempt governor.
type LoginConfig struct {
	TempLockoutThreshold int
	PermLockoutThreshold int
	LockoutDuration      time.Duration
	BackoffBase          time.Duration
	BackoffMax           time.Duration
}

type ReceiptConfig struct {
	MaxBytes      int64
	UploadEnabled bool
}

type PreviewConfig struct {
	Addr            string
	URLTTL          time.Duration
	CleanupInterval time.Duration
	RequestsPerMin  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Client: ClientConfig{
			APIBaseURL:        strings.TrimRight(getEnv("EVENTEASE_API_BASE_URL", defaultAPIBaseURL), "/"),
			Env:               getEnv("ENV", "development"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
			EnrichConcurrency: getEnvAsInt("ENRICH_CONCURRENCY", 4),
			PaymentReference:  getEnv("PAYMENT_REFERENCE", "EventEase HQ"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", defaultSQLitePath()),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "eventease"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 4)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Login: LoginConfig{
			TempLockoutThreshold: getEnvAsInt("LOGIN_TEMP_LOCKOUT_THRESHOLD", 3),
			PermLockoutThreshold: getEnvAsInt("LOGIN_PERM_LOCKOUT_THRESHOLD", 6),
			LockoutDuration:      getEnvAsDuration("LOGIN_LOCKOUT_DURATION", 5*time.Minute),
			BackoffBase:          getEnvAsDuration("LOGIN_BACKOFF_BASE", 1*time.Second),
			BackoffMax:           getEnvAsDuration("LOGIN_BACKOFF_MAX", 30*time.Second),
		},
		Receipts: ReceiptConfig{
			MaxBytes:      int64(getEnvAsInt("RECEIPT_MAX_BYTES", 20*1024*1024)),
			UploadEnabled: getEnvAsBool("RECEIPT_UPLOAD_ENABLED", true),
		},
		Preview: PreviewConfig{
			Addr:            getEnv("PREVIEW_ADDR", "127.0.0.1:0"),
			URLTTL:          getEnvAsDuration("PREVIEW_URL_TTL", 2*time.Minute),
			CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", 30*time.Second),
			RequestsPerMin:  getEnvAsInt("PREVIEW_REQUESTS_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %s, %s or %s)", c.Storage.Driver, DriverSQLite, DriverPostgres, DriverMemory)
	}

	if c.Login.TempLockoutThreshold < 1 {
		return fmt.Errorf("LOGIN_TEMP_LOCKOUT_THRESHOLD must be at least 1")
	}
	if c.Login.PermLockoutThreshold <= c.Login.TempLockoutThreshold {
		return fmt.Errorf("LOGIN_PERM_LOCKOUT_THRESHOLD (%d) must be greater than LOGIN_TEMP_LOCKOUT_THRESHOLD (%d)",
			c.Login.PermLockoutThreshold, c.Login.TempLockoutThreshold)
	}
	if c.Login.BackoffMax < c.Login.BackoffBase {
		return fmt.Errorf("LOGIN_BACKOFF_MAX must not be shorter than LOGIN_BACKOFF_BASE")
	}
	if c.Client.EnrichConcurrency < 1 {
		c.Client.EnrichConcurrency = 1
	}
	if c.Receipts.MaxBytes <= 0 {
		return fmt.Errorf("RECEIPT_MAX_BYTES must be positive")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "eventease.db"
	}
	return filepath.Join(dir, "eventease", "state.db")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
