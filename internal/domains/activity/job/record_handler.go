package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/activity/model"
	"library-backend/internal/domains/activity/repository"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

// RecordHandler persists entries queued by the API in queue mode.
type RecordHandler struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

func NewRecordHandler(repo repository.RepositoryInterface, c cache.Cache) *RecordHandler {
	return &RecordHandler{repo: repo, cache: c}
}

func (h *RecordHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	entry, err := model.DecodePayload(task.Payload())
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode activity payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := h.repo.Insert(ctx, &entry); err != nil {
		log.Error().
			Err(err).
			Str("activity_id", entry.ID.String()).
			Msg("Failed to persist activity")
		return fmt.Errorf("insert activity: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.DeletePattern(ctx, shared.CacheKeyDashboardPattern); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate dashboard cache")
		}
	}

	log.Debug().
		Str("activity_id", entry.ID.String()).
		Str("type", string(entry.Type)).
		Msg("Activity recorded")

	return nil
}
