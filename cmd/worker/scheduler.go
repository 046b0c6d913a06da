package main

import (
	"github.com/rs/zerolog/log"

	"library-backend/internal/infrastructure/queue"
)

// asynqScheduler wraps queue.Scheduler with logging
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *Config) (*asynqScheduler, error) {
	scheduler := queue.NewScheduler(cfg.Redis, cfg.Jobs)

	if err := scheduler.RegisterJobs(); err != nil {
		return nil, err
	}

	go func() {
		log.Info().Strs("entries", scheduler.Entries()).Msg("[Scheduler] Starting")
		if err := scheduler.Start(); err != nil {
			log.Error().Err(err).Msg("[Scheduler] Stopped with error")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}, nil
}

func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("[Scheduler] Shutting down")
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] Stopped")
}
