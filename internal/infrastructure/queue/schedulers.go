package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/config"
	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
	entries   []string
}

func NewScheduler(redis config.RedisConfig, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		RedisOpt(redis),
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs registers every periodic job.
func (s *Scheduler) RegisterJobs() error {
	return s.registerOverdueScanJob()
}

// ================================================
// JOB: Overdue scan (default every hour)
// ================================================
func (s *Scheduler) registerOverdueScanJob() error {
	spec := s.jobConfig.OverdueScanCron
	if spec == "" {
		spec = "@every 1h"
	}

	entryID, err := s.scheduler.Register(
		spec,
		asynq.NewTask(shared.TypeOverdueScan, nil),
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register OverdueScan job", err)
		return err
	}

	s.entries = append(s.entries, entryID)
	logger.Info("Registered OverdueScan job", map[string]interface{}{
		"schedule": spec,
		"entry_id": entryID,
	})
	return nil
}

// Entries returns the scheduler entry ids registered so far.
func (s *Scheduler) Entries() []string {
	return s.entries
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
