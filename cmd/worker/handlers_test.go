package main

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	activityJob "library-backend/internal/domains/activity/job"
	lendingJob "library-backend/internal/domains/lending/job"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

func TestRegisterHandlers(t *testing.T) {
	registry := &HandlerRegistry{
		recordActivity: activityJob.NewRecordHandler(nil, cache.NewMemoryCache()),
		overdueScan:    lendingJob.NewOverdueScanHandler(nil, cache.NewMemoryCache(), 0),
	}

	mux := asynq.NewServeMux()
	registry.RegisterHandlers(mux)

	for _, taskType := range []string{shared.TypeRecordActivity, shared.TypeOverdueScan} {
		_, pattern := mux.Handler(asynq.NewTask(taskType, nil))
		assert.Equal(t, taskType, pattern)
	}
}
