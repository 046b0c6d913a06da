package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Lending.LoanPeriodDays)
	assert.True(t, cfg.Lending.FinePerDay.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, "sync", cfg.Activity.Mode)
	assert.Equal(t, 2*time.Second, cfg.Activity.WriteTimeout)
	assert.Equal(t, 10, cfg.Activity.RecentLimit)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOAN_PERIOD_DAYS", "21")
	t.Setenv("FINE_PER_DAY", "1.25")
	t.Setenv("ACTIVITY_MODE", "queue")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.Lending.LoanPeriodDays)
	assert.Equal(t, "1.25", cfg.Lending.FinePerDay.String())
	assert.Equal(t, "queue", cfg.Activity.Mode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
}

func TestLoad_InvalidFine(t *testing.T) {
	t.Setenv("FINE_PER_DAY", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development"},
			JWT:      JWTConfig{Secret: defaultJWTSecret},
			Lending:  LendingConfig{LoanPeriodDays: 14, FinePerDay: decimal.NewFromFloat(0.5)},
			Activity: ActivityConfig{Mode: "sync", WriteTimeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero loan period", func(c *Config) { c.Lending.LoanPeriodDays = 0 }, true},
		{"negative fine", func(c *Config) { c.Lending.FinePerDay = decimal.NewFromInt(-1) }, true},
		{"unknown activity mode", func(c *Config) { c.Activity.Mode = "kafka" }, true},
		{"auth without hash", func(c *Config) { c.Auth.Enabled = true }, true},
		{"production default secret", func(c *Config) { c.App.Environment = "production" }, true},
		{"production ok", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = "s3cret"
			c.Database.Password = "pw"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoolConfig(t *testing.T) {
	t.Setenv("DB_NAME", "lib_test")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	pool, err := cfg.Database.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, "lib_test", pool.DBName)
	assert.Equal(t, int32(25), pool.MaxConns)
	assert.Equal(t, 250*time.Millisecond, pool.RetryDelay)
	assert.Equal(t, 5*time.Minute, pool.MaxConnLifetime)
}

func TestPoolConfig_Invalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("DB_CONNECT_TIMEOUT", "soon")
		cfg, err := Load()
		require.NoError(t, err)

		_, err = cfg.Database.PoolConfig()
		assert.ErrorContains(t, err, "DB_CONNECT_TIMEOUT")
	})

	t.Run("min above max", func(t *testing.T) {
		_, err := DatabaseConfig{MaxConns: 2, MinConns: 4}.PoolConfig()
		assert.Error(t, err)
	})
}
