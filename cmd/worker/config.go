package main

import (
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
)

// Config holds the worker-specific view of the app config.
type Config struct {
	Redis       config.RedisConfig
	Jobs        config.JobConfig
	Concurrency int
	HealthPort  string
}

func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		Redis:       app.Redis,
		Jobs:        app.Jobs,
		Concurrency: app.Worker.Concurrency,
		HealthPort:  app.Worker.HealthPort,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}

	log.Info().
		Str("redis", cfg.Redis.Host).
		Int("concurrency", cfg.Concurrency).
		Str("overdue_scan", cfg.Jobs.OverdueScanCron).
		Msg("[Config] Worker configuration loaded")

	return cfg
}
