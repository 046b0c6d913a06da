package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/activity/model"
	"library-backend/internal/domains/activity/repository"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

const (
	ModeSync  = "sync"
	ModeQueue = "queue"

	// EventActivity is the realtime event type pushed for each entry.
	EventActivity = "activity"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher is satisfied by *realtime.Hub.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// Recorder appends activity entries outside the caller's unit of work.
// Record never fails the caller: write errors are logged and swallowed, and
// the write runs on a context detached from the request with its own timeout.
// Only entries that were written or enqueued reach subscribers.
type Recorder interface {
	Record(ctx context.Context, entry model.Entry)
}

type RecorderOptions struct {
	Mode      string
	Timeout   time.Duration
	Enqueuer  Enqueuer
	Publisher Publisher
	Cache     cache.Cache
}

type recorder struct {
	repo      repository.RepositoryInterface
	mode      string
	timeout   time.Duration
	enqueuer  Enqueuer
	publisher Publisher
	cache     cache.Cache
	now       func() time.Time
}

func NewRecorder(repo repository.RepositoryInterface, opts RecorderOptions) Recorder {
	mode := opts.Mode
	if mode != ModeQueue || opts.Enqueuer == nil {
		mode = ModeSync
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &recorder{
		repo:      repo,
		mode:      mode,
		timeout:   timeout,
		enqueuer:  opts.Enqueuer,
		publisher: opts.Publisher,
		cache:     opts.Cache,
		now:       time.Now,
	}
}

func (r *recorder) Record(ctx context.Context, entry model.Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	persisted := false
	if r.mode == ModeQueue {
		persisted = r.enqueue(writeCtx, entry)
	}
	if !persisted {
		persisted = r.write(writeCtx, entry)
	}

	// Dropped entries are never announced.
	if !persisted {
		return
	}

	if r.cache != nil {
		if err := r.cache.DeletePattern(writeCtx, shared.CacheKeyDashboardPattern); err != nil {
			log.Debug().Err(err).Msg("dashboard cache invalidation failed")
		}
	}

	if r.publisher != nil {
		r.publisher.Publish(EventActivity, entry)
	}
}

func (r *recorder) enqueue(ctx context.Context, entry model.Entry) bool {
	payload, err := model.EncodePayload(entry)
	if err != nil {
		log.Warn().Err(err).Str("activity_id", entry.ID.String()).Msg("Failed to encode activity task")
		return false
	}

	task := asynq.NewTask(shared.TypeRecordActivity, payload)
	_, err = r.enqueuer.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDefault),
		asynq.TaskID(entry.ID.String()),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		log.Warn().
			Err(err).
			Str("activity_id", entry.ID.String()).
			Msg("Failed to enqueue activity, writing synchronously")
		return false
	}
	return true
}

func (r *recorder) write(ctx context.Context, entry model.Entry) bool {
	if err := r.repo.Insert(ctx, &entry); err != nil {
		log.Error().
			Err(err).
			Str("activity_id", entry.ID.String()).
			Str("type", string(entry.Type)).
			Str("message", entry.Message).
			Msg("Failed to record activity")
		return false
	}
	return true
}
