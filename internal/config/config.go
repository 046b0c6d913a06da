package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration.
// It is populated from environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	MinIO    MinIOConfig
	Lending  LendingConfig
	Activity ActivityConfig
	Jobs     JobConfig
	Worker   WorkerConfig
	Static   StaticConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// AuthConfig guards mutating routes when Enabled.
type AuthConfig struct {
	Enabled           bool
	AdminUsername     string
	AdminPasswordHash string // bcrypt
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// MinIOConfig is used only when Enabled; without it cover uploads are refused.
type MinIOConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LendingConfig is the loan policy.
type LendingConfig struct {
	LoanPeriodDays int
	FinePerDay     decimal.Decimal
}

// ActivityConfig controls how activity entries are persisted.
type ActivityConfig struct {
	Mode         string // sync | queue
	WriteTimeout time.Duration
	RecentLimit  int
	CacheTTL     time.Duration
}

// JobConfig holds the cron specs used by the worker scheduler.
type JobConfig struct {
	OverdueScanCron string
}

// WorkerConfig sizes the asynq worker process.
type WorkerConfig struct {
	Concurrency int
	HealthPort  string
}

type StaticConfig struct {
	Dir string
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	finePerDay, err := decimal.NewFromString(getEnv("FINE_PER_DAY", "0.50"))
	if err != nil {
		return nil, fmt.Errorf("invalid FINE_PER_DAY: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "library"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "library_dev"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		Auth: AuthConfig{
			Enabled:           getEnvBool("AUTH_ENABLED", false),
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			MaxFailedAttempts: getEnvInt("AUTH_MAX_FAILED_ATTEMPTS", 5),
			LockoutDuration:   getEnvDuration("AUTH_LOCKOUT_DURATION", 15*time.Minute),
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", false),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "library"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Lending: LendingConfig{
			LoanPeriodDays: getEnvInt("LOAN_PERIOD_DAYS", 14),
			FinePerDay:     finePerDay,
		},
		Activity: ActivityConfig{
			Mode:         getEnv("ACTIVITY_MODE", "sync"),
			WriteTimeout: getEnvDuration("ACTIVITY_WRITE_TIMEOUT", 2*time.Second),
			RecentLimit:  getEnvInt("RECENT_ACTIVITY_LIMIT", 10),
			CacheTTL:     getEnvDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		},
		Jobs: JobConfig{
			OverdueScanCron: getEnv("OVERDUE_SCAN_CRON", "@every 1h"),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:  getEnv("WORKER_HEALTH_PORT", "9999"),
		},
		Static: StaticConfig{
			Dir: getEnv("STATIC_DIR", "./public"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for values the app cannot run with.
func (c *Config) Validate() error {
	if c.Lending.LoanPeriodDays <= 0 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be positive")
	}
	if c.Lending.FinePerDay.IsNegative() {
		return fmt.Errorf("FINE_PER_DAY cannot be negative")
	}
	if c.Activity.Mode != "sync" && c.Activity.Mode != "queue" {
		return fmt.Errorf("ACTIVITY_MODE must be sync or queue, got %q", c.Activity.Mode)
	}
	if c.Activity.WriteTimeout <= 0 {
		return fmt.Errorf("ACTIVITY_WRITE_TIMEOUT must be positive")
	}

	if c.Auth.Enabled && c.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be set when AUTH_ENABLED=true")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if !c.Auth.Enabled {
			log.Warn().Msg("AUTH_ENABLED=false in production - mutating routes are public")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
