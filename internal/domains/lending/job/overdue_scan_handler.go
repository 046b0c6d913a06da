package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/lending/model"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

// SummarySource is satisfied by the lending service.
type SummarySource interface {
	OverdueSummary(ctx context.Context) (*model.OverdueSummary, error)
}

// OverdueScanHandler runs on the scheduler, logs the overdue totals and
// caches them for the dashboard.
type OverdueScanHandler struct {
	source SummarySource
	cache  cache.Cache
	ttl    time.Duration
}

func NewOverdueScanHandler(source SummarySource, c cache.Cache, ttl time.Duration) *OverdueScanHandler {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &OverdueScanHandler{source: source, cache: c, ttl: ttl}
}

func (h *OverdueScanHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	summary, err := h.source.OverdueSummary(ctx)
	if err != nil {
		return fmt.Errorf("overdue summary: %w", err)
	}

	logger.Info("Overdue scan completed", map[string]interface{}{
		"overdue_count": summary.Count,
		"total_fines":   summary.TotalFines.StringFixed(2),
	})

	if h.cache != nil {
		if err := h.cache.Set(ctx, shared.CacheKeyOverdueSummary, summary, h.ttl); err != nil {
			logger.Warn("Failed to cache overdue summary", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

// NewOverdueScanTask builds the periodic task registered with the scheduler.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(shared.TypeOverdueScan, nil)
}
