package config

import (
	"fmt"
	"os"
	"time"

	"library-backend/internal/infrastructure/database"
)

// PoolConfig turns the loaded connection settings into the pgx pool config.
// Lifetimes and retry timings come from DB_* duration variables.
func (d DatabaseConfig) PoolConfig() (*database.DBConfig, error) {
	if d.MinConns > d.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", d.MinConns, d.MaxConns)
	}

	cfg := &database.DBConfig{
		Host:       d.Host,
		Port:       d.Port,
		Username:   d.User,
		Password:   d.Password,
		DBName:     d.Database,
		SSLMode:    d.SSLMode,
		MaxConns:   int32(d.MaxConns),
		MinConns:   int32(d.MinConns),
		MaxRetries: getEnvInt("DB_MAX_RETRIES", 5),
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"DB_MAX_CONN_LIFETIME", 5 * time.Minute, &cfg.MaxConnLifetime},
		{"DB_MAX_CONN_IDLE_TIME", time.Minute, &cfg.MaxConnIdleTime},
		{"DB_HEALTH_CHECK_PERIOD", time.Minute, &cfg.HealthCheckPeriod},
		{"DB_RETRY_DELAY", time.Second, &cfg.RetryDelay},
		{"DB_CONNECT_TIMEOUT", 10 * time.Second, &cfg.ConnectTimeout},
	}

	for _, dur := range durations {
		*dur.dst = dur.def
		raw := os.Getenv(dur.key)
		if raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", dur.key, err)
		}
		*dur.dst = v
	}

	return cfg, nil
}
