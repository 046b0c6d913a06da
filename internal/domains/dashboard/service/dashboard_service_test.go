package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityModel "library-backend/internal/domains/activity/model"
	lendingModel "library-backend/internal/domains/lending/model"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

type countStub struct {
	n     int
	err   error
	calls int
}

func (c *countStub) Count(ctx context.Context) (int, error) {
	c.calls++
	return c.n, c.err
}

func (c *countStub) CountActive(ctx context.Context) (int, error) {
	c.calls++
	return c.n, c.err
}

type activityStub struct {
	lastLimit int
	calls     int
}

func (a *activityStub) Recent(ctx context.Context, limit int) ([]activityModel.EntryView, error) {
	a.calls++
	a.lastLimit = limit
	out := make([]activityModel.EntryView, 0, limit)
	for i := 0; i < limit && i < 3; i++ {
		out = append(out, activityModel.EntryView{Entry: activityModel.Entry{Message: "entry"}})
	}
	return out, nil
}

func newDeps() (Dependencies, *countStub, *activityStub) {
	books := &countStub{n: 12}
	act := &activityStub{}
	return Dependencies{
		Books:    books,
		Members:  &countStub{n: 5},
		Loans:    &countStub{n: 3},
		Activity: act,
		Cache:    cache.NewMemoryCache(),
	}, books, act
}

func TestCounters_Cached(t *testing.T) {
	deps, books, _ := newDeps()
	svc := NewDashboardService(deps, time.Minute, 10)

	c, err := svc.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, c.TotalBooks)
	assert.Equal(t, 5, c.TotalMembers)
	assert.Equal(t, 3, c.ActiveTransactions)

	_, err = svc.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, books.calls)

	require.NoError(t, deps.Cache.DeletePattern(context.Background(), shared.CacheKeyDashboardPattern))
	_, err = svc.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, books.calls)
}

func TestCounters_StoreError(t *testing.T) {
	deps, _, _ := newDeps()
	deps.Members = &countStub{err: errors.New("db down")}

	_, err := NewDashboardService(deps, time.Minute, 10).Counters(context.Background())
	assert.Error(t, err)
}

func TestRecentActivity_LimitClamped(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 10},
		{1, 1},
		{50, 50},
		{500, 100},
	}

	for _, tt := range tests {
		deps, _, act := newDeps()
		deps.Cache = nil
		_, err := NewDashboardService(deps, time.Minute, 10).RecentActivity(context.Background(), tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, act.lastLimit, "limit %d", tt.in)
	}
}

func TestOverview_IncludesCachedOverdue(t *testing.T) {
	deps, _, _ := newDeps()
	svc := NewDashboardService(deps, time.Minute, 10)

	o, err := svc.Overview(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, o.Overdue)
	assert.Len(t, o.RecentActivity, 3)

	require.NoError(t, deps.Cache.Set(context.Background(), shared.CacheKeyOverdueSummary, lendingModel.OverdueSummary{Count: 4}, time.Minute))

	o, err = svc.Overview(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, o.Overdue)
	assert.Equal(t, 4, o.Overdue.Count)
}
