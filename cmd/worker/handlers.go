package main

import (
	"github.com/hibiken/asynq"

	activityJob "library-backend/internal/domains/activity/job"
	lendingJob "library-backend/internal/domains/lending/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	recordActivity *activityJob.RecordHandler
	overdueScan    *lendingJob.OverdueScanHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		recordActivity: c.RecordActivityJob,
		overdueScan:    c.OverdueScanJob,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeRecordActivity, h.recordActivity.ProcessTask)
	mux.HandleFunc(shared.TypeOverdueScan, h.overdueScan.ProcessTask)
}
