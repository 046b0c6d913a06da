package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/activity/model"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

type fakeRepo struct {
	mu       sync.Mutex
	entries  []model.Entry
	err      error
	delay    time.Duration
	deadline bool
}

func (f *fakeRepo) Insert(ctx context.Context, entry *model.Entry) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			f.mu.Lock()
			f.deadline = true
			f.mu.Unlock()
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRepo) Recent(ctx context.Context, limit int) ([]model.EntryView, error) {
	return nil, nil
}

func (f *fakeRepo) DeleteAll(ctx context.Context) (int64, error) { return 0, nil }

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fakePublisher struct {
	events []interface{}
}

func (f *fakePublisher) Publish(eventType string, data interface{}) {
	f.events = append(f.events, data)
}

func issueEntry() model.Entry {
	return model.Entry{Type: model.TypeIssue, Message: model.IssueMessage("Dune", "Ada")}
}

func TestRecorder_SyncWrites(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	mem := cache.NewMemoryCache()
	require.NoError(t, mem.Set(context.Background(), shared.CacheKeyCounters, 1, 0))

	r := NewRecorder(repo, RecorderOptions{Mode: ModeSync, Publisher: pub, Cache: mem})
	r.Record(context.Background(), issueEntry())

	require.Len(t, repo.entries, 1)
	got := repo.entries[0]
	assert.NotEqual(t, "", got.ID.String())
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, `Issued "Dune" to Ada`, got.Message)
	assert.Len(t, pub.events, 1)

	exists, _ := mem.Exists(context.Background(), shared.CacheKeyCounters)
	assert.False(t, exists, "dashboard cache should be invalidated")
}

func TestRecorder_SwallowsStoreErrors(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	r := NewRecorder(repo, RecorderOptions{Mode: ModeSync})

	assert.NotPanics(t, func() {
		r.Record(context.Background(), issueEntry())
	})
	assert.Empty(t, repo.entries)
}

func TestRecorder_FailedWriteIsNotPublished(t *testing.T) {
	tests := []struct {
		name string
		opts RecorderOptions
		repo *fakeRepo
	}{
		{
			name: "sync write fails",
			repo: &fakeRepo{err: errors.New("db down")},
			opts: RecorderOptions{Mode: ModeSync},
		},
		{
			name: "enqueue and fallback write both fail",
			repo: &fakeRepo{err: errors.New("db down")},
			opts: RecorderOptions{Mode: ModeQueue, Enqueuer: &fakeEnqueuer{err: errors.New("redis down")}},
		},
		{
			name: "write times out",
			repo: &fakeRepo{delay: time.Second},
			opts: RecorderOptions{Mode: ModeSync, Timeout: 20 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			mem := cache.NewMemoryCache()
			require.NoError(t, mem.Set(context.Background(), shared.CacheKeyCounters, 1, 0))

			opts := tt.opts
			opts.Publisher = pub
			opts.Cache = mem
			NewRecorder(tt.repo, opts).Record(context.Background(), issueEntry())

			assert.Empty(t, pub.events)
			exists, _ := mem.Exists(context.Background(), shared.CacheKeyCounters)
			assert.True(t, exists, "cache untouched when nothing was stored")
		})
	}
}

func TestRecorder_EnqueuedEntryIsPublished(t *testing.T) {
	pub := &fakePublisher{}
	enq := &fakeEnqueuer{}
	r := NewRecorder(&fakeRepo{}, RecorderOptions{Mode: ModeQueue, Enqueuer: enq, Publisher: pub})

	r.Record(context.Background(), issueEntry())

	require.Len(t, enq.tasks, 1)
	assert.Len(t, pub.events, 1)
}

func TestRecorder_BoundedByTimeout(t *testing.T) {
	repo := &fakeRepo{delay: time.Second}
	r := NewRecorder(repo, RecorderOptions{Mode: ModeSync, Timeout: 20 * time.Millisecond})

	start := time.Now()
	r.Record(context.Background(), issueEntry())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, repo.deadline)
}

func TestRecorder_DetachedFromCancelledRequest(t *testing.T) {
	repo := &fakeRepo{}
	r := NewRecorder(repo, RecorderOptions{Mode: ModeSync})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, issueEntry())

	assert.Len(t, repo.entries, 1)
}

func TestRecorder_QueueMode(t *testing.T) {
	repo := &fakeRepo{}
	enq := &fakeEnqueuer{}
	r := NewRecorder(repo, RecorderOptions{Mode: ModeQueue, Enqueuer: enq})

	r.Record(context.Background(), issueEntry())

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, shared.TypeRecordActivity, enq.tasks[0].Type())
	assert.Empty(t, repo.entries)

	decoded, err := model.DecodePayload(enq.tasks[0].Payload())
	require.NoError(t, err)
	assert.Equal(t, model.TypeIssue, decoded.Type)
}

func TestRecorder_QueueFallsBackToSync(t *testing.T) {
	repo := &fakeRepo{}
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	r := NewRecorder(repo, RecorderOptions{Mode: ModeQueue, Enqueuer: enq})

	r.Record(context.Background(), issueEntry())

	assert.Len(t, repo.entries, 1)
}

func TestRecorder_QueueWithoutEnqueuerIsSync(t *testing.T) {
	repo := &fakeRepo{}
	r := NewRecorder(repo, RecorderOptions{Mode: ModeQueue})

	r.Record(context.Background(), issueEntry())

	assert.Len(t, repo.entries, 1)
}
