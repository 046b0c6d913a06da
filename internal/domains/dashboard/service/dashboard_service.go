package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	activityModel "library-backend/internal/domains/activity/model"
	"library-backend/internal/domains/dashboard/model"
	lendingModel "library-backend/internal/domains/lending/model"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

type ServiceInterface interface {
	Counters(ctx context.Context) (*model.Counters, error)
	RecentActivity(ctx context.Context, limit int) ([]activityModel.EntryView, error)
	Overview(ctx context.Context, limit int) (*model.Overview, error)
}

// Counter is satisfied by the book and member repositories.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// ActiveCounter is satisfied by the lending repository.
type ActiveCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// ActivitySource is satisfied by the activity repository.
type ActivitySource interface {
	Recent(ctx context.Context, limit int) ([]activityModel.EntryView, error)
}

type Dependencies struct {
	Books    Counter
	Members  Counter
	Loans    ActiveCounter
	Activity ActivitySource
	Cache    cache.Cache
}

type dashboardService struct {
	deps         Dependencies
	ttl          time.Duration
	defaultLimit int
}

func NewDashboardService(deps Dependencies, ttl time.Duration, defaultLimit int) ServiceInterface {
	return &dashboardService{deps: deps, ttl: ttl, defaultLimit: defaultLimit}
}

func (s *dashboardService) Counters(ctx context.Context) (*model.Counters, error) {
	var counters model.Counters
	if s.cacheGet(ctx, shared.CacheKeyCounters, &counters) {
		return &counters, nil
	}

	var err error
	if counters.TotalBooks, err = s.deps.Books.Count(ctx); err != nil {
		return nil, err
	}
	if counters.TotalMembers, err = s.deps.Members.Count(ctx); err != nil {
		return nil, err
	}
	if counters.ActiveTransactions, err = s.deps.Loans.CountActive(ctx); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, shared.CacheKeyCounters, counters)
	return &counters, nil
}

// RecentActivity returns the newest entries first. limit is clamped to [1,100].
func (s *dashboardService) RecentActivity(ctx context.Context, limit int) ([]activityModel.EntryView, error) {
	limit = model.ClampRecentLimit(limit, s.defaultLimit)
	key := fmt.Sprintf(shared.CacheKeyRecentActivity, limit)

	var entries []activityModel.EntryView
	if s.cacheGet(ctx, key, &entries) {
		return entries, nil
	}

	entries, err := s.deps.Activity.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, entries)
	return entries, nil
}

func (s *dashboardService) Overview(ctx context.Context, limit int) (*model.Overview, error) {
	counters, err := s.Counters(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentActivity(ctx, limit)
	if err != nil {
		return nil, err
	}

	overview := &model.Overview{Counters: *counters, RecentActivity: recent}

	var summary lendingModel.OverdueSummary
	if s.cacheGet(ctx, shared.CacheKeyOverdueSummary, &summary) {
		overview.Overdue = &summary
	}
	return overview, nil
}

// Cache failures are logged and treated as misses.
func (s *dashboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.deps.Cache == nil {
		return false
	}
	found, err := s.deps.Cache.Get(ctx, key, dest)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("dashboard cache read failed")
		return false
	}
	return found
}

func (s *dashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.deps.Cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.deps.Cache.Set(ctx, key, value, s.ttl); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
}
