package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityModel "library-backend/internal/domains/activity/model"
	dashboardService "library-backend/internal/domains/dashboard/service"
	"library-backend/internal/domains/lending/model"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

type fakeBook struct {
	title     string
	total     int
	available int
}

// fakeRepo mirrors the row-lock semantics of the postgres repository with a mutex.
type fakeRepo struct {
	mu           sync.Mutex
	books        map[uuid.UUID]*fakeBook
	members      map[uuid.UUID]string
	transactions map[uuid.UUID]*model.Transaction
	findErr      error
	issueErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:        map[uuid.UUID]*fakeBook{},
		members:      map[uuid.UUID]string{},
		transactions: map[uuid.UUID]*model.Transaction{},
	}
}

func (f *fakeRepo) addBook(title string, copies int) uuid.UUID {
	id := uuid.New()
	f.books[id] = &fakeBook{title: title, total: copies, available: copies}
	return id
}

func (f *fakeRepo) addMember(name string) uuid.UUID {
	id := uuid.New()
	f.members[id] = name
	return id
}

func (f *fakeRepo) Issue(ctx context.Context, bookID, memberID uuid.UUID, borrowedAt, dueAt time.Time) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return nil, f.issueErr
	}
	b, ok := f.books[bookID]
	if !ok || b.available <= 0 {
		return nil, model.NewBookUnavailableError(bookID)
	}
	if _, ok := f.members[memberID]; !ok {
		return nil, model.NewMemberNotFoundError(memberID)
	}

	t := &model.Transaction{
		ID:         uuid.New(),
		BookID:     bookID,
		MemberID:   memberID,
		BorrowDate: borrowedAt,
		DueDate:    dueAt,
		Status:     model.StatusActive,
	}
	f.transactions[t.ID] = t
	b.available--
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) Return(ctx context.Context, id uuid.UUID, returnedAt time.Time) (*model.ReturnOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.transactions[id]
	if !ok {
		return nil, model.NewTransactionNotFoundError(id)
	}
	if !t.IsActive() {
		return nil, model.NewAlreadyReturnedError(id)
	}
	t.Status = model.StatusReturned
	t.ReturnDate = &returnedAt

	restored := false
	if b := f.books[t.BookID]; b != nil && b.available < b.total {
		b.available++
		restored = true
	}
	return &model.ReturnOutcome{Transaction: *t, CopyRestored: restored}, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TransactionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.transactions[id]
	if !ok {
		return nil, model.NewTransactionNotFoundError(id)
	}
	v := &model.TransactionView{Transaction: *t, MemberName: f.members[t.MemberID]}
	if b := f.books[t.BookID]; b != nil {
		v.BookTitle = b.title
	}
	return v, nil
}

func (f *fakeRepo) List(ctx context.Context, filter model.ListFilter) ([]model.TransactionView, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.TransactionView, 0)
	for _, t := range f.transactions {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, model.TransactionView{Transaction: *t})
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.TransactionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.TransactionView, 0)
	for _, t := range f.transactions {
		if t.IsOverdue(now) {
			out = append(out, model.TransactionView{Transaction: *t})
		}
	}
	return out, nil
}

func (f *fakeRepo) CountActive(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, t := range f.transactions {
		if t.IsActive() {
			n++
		}
	}
	return n, nil
}

type countFunc func() int

func (c countFunc) Count(ctx context.Context) (int, error) { return c(), nil }

type fakeRecorder struct {
	mu      sync.Mutex
	entries []activityModel.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, e activityModel.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(repo *fakeRepo, rec *fakeRecorder, c cache.Cache) *lendingService {
	svc := NewLendingService(repo, rec, c, model.DefaultPolicy()).(*lendingService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestIssue(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	mem := cache.NewMemoryCache()
	require.NoError(t, mem.Set(context.Background(), shared.CacheKeyCounters, 1, 0))

	bookID := repo.addBook("Dune", 2)
	memberID := repo.addMember("Ada")

	tx, err := newService(repo, rec, mem).Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusActive, tx.Status)
	assert.Nil(t, tx.ReturnDate)
	assert.Equal(t, fixedNow, tx.BorrowDate)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), tx.DueDate)
	assert.Equal(t, 1, repo.books[bookID].available)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, activityModel.TypeIssue, rec.entries[0].Type)
	assert.Equal(t, `Issued "Dune" to Ada`, rec.entries[0].Message)

	exists, _ := mem.Exists(context.Background(), shared.CacheKeyCounters)
	assert.False(t, exists)
}

func TestIssue_Unavailable(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	bookID := repo.addBook("Dune", 0)
	memberID := repo.addMember("Ada")
	svc := newService(repo, rec, nil)

	_, err := svc.Issue(context.Background(), bookID, memberID)
	assert.ErrorIs(t, err, model.ErrBookUnavailable)

	_, err = svc.Issue(context.Background(), uuid.New(), memberID)
	assert.ErrorIs(t, err, model.ErrBookUnavailable)

	assert.Empty(t, repo.transactions)
	assert.Empty(t, rec.entries)
}

func TestIssue_MemberNotFound(t *testing.T) {
	repo := newFakeRepo()
	bookID := repo.addBook("Dune", 1)

	_, err := newService(repo, &fakeRecorder{}, nil).Issue(context.Background(), bookID, uuid.New())
	assert.ErrorIs(t, err, model.ErrMemberNotFound)
	assert.Equal(t, 1, repo.books[bookID].available)
}

func TestIssue_InconsistentStatePropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.issueErr = model.NewInconsistentStateError("decrement applied to 0 rows")
	rec := &fakeRecorder{}

	_, err := newService(repo, rec, nil).Issue(context.Background(), uuid.New(), uuid.New())
	assert.True(t, model.IsInconsistentState(err))
	assert.Empty(t, rec.entries)
}

func TestIssue_NamesFallBackToUnknown(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	bookID := repo.addBook("Dune", 1)
	memberID := repo.addMember("Ada")
	repo.findErr = shared.StoreError("find", errors.New("db down"))

	_, err := newService(repo, rec, nil).Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, `Issued "Unknown" to Unknown`, rec.entries[0].Message)
}

func TestIssue_ConcurrentRequestsRespectCopies(t *testing.T) {
	const (
		copies   = 3
		requests = 20
	)
	repo := newFakeRepo()
	bookID := repo.addBook("Dune", copies)
	memberID := repo.addMember("Ada")
	svc := newService(repo, &fakeRecorder{}, nil)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(context.Background(), bookID, memberID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrBookUnavailable):
				unavailable++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, copies, successes)
	assert.Equal(t, requests-copies, unavailable)
	assert.Equal(t, 0, repo.books[bookID].available)
	assert.Len(t, repo.transactions, copies)
}

func TestReturn(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	bookID := repo.addBook("Dune", 1)
	memberID := repo.addMember("Ada")
	svc := newService(repo, rec, nil)

	issued, err := svc.Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)

	returned, err := svc.Return(context.Background(), issued.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, 1, repo.books[bookID].available)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, activityModel.TypeReturn, rec.entries[1].Type)
	assert.Equal(t, `Returned "Dune" by Ada`, rec.entries[1].Message)
}

func TestReturn_Twice(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	bookID := repo.addBook("Dune", 2)
	memberID := repo.addMember("Ada")
	svc := newService(repo, rec, nil)

	issued, err := svc.Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), issued.ID)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), issued.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	assert.Equal(t, 2, repo.books[bookID].available)
	assert.Len(t, rec.entries, 2)
}

func TestReturn_NotFound(t *testing.T) {
	_, err := newService(newFakeRepo(), &fakeRecorder{}, nil).Return(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

func TestReturn_CapsAtTotal(t *testing.T) {
	repo := newFakeRepo()
	bookID := repo.addBook("Dune", 1)
	memberID := repo.addMember("Ada")
	svc := newService(repo, &fakeRecorder{}, nil)

	issued, err := svc.Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)
	// Copy count corrected by an admin edit while the loan was out.
	repo.books[bookID].available = 1

	_, err = svc.Return(context.Background(), issued.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.books[bookID].available)
}

func TestIssueReturnCycle_DashboardCountsActiveLoans(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	mem := cache.NewMemoryCache()
	bookID := repo.addBook("Dune", 3)
	alice := repo.addMember("Alice")
	bob := repo.addMember("Bob")
	svc := newService(repo, &fakeRecorder{}, mem)

	dash := dashboardService.NewDashboardService(dashboardService.Dependencies{
		Books:   countFunc(func() int { return len(repo.books) }),
		Members: countFunc(func() int { return len(repo.members) }),
		Loans:   repo,
		Cache:   mem,
	}, time.Minute, 10)

	txA, err := svc.Issue(ctx, bookID, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.books[bookID].available)

	counters, err := dash.Counters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counters.ActiveTransactions)

	txB, err := svc.Issue(ctx, bookID, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.books[bookID].available)

	returned, err := svc.Return(ctx, txA.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, returned.Status)
	assert.Equal(t, 2, repo.books[bookID].available)
	assert.Equal(t, 3, repo.books[bookID].total)

	counters, err = dash.Counters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counters.ActiveTransactions)
	assert.Equal(t, 1, counters.TotalBooks)
	assert.Equal(t, 2, counters.TotalMembers)

	view, err := svc.Get(ctx, txB.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, view.Status)
}

func TestOverdueSummary(t *testing.T) {
	repo := newFakeRepo()
	bookID := repo.addBook("Dune", 2)
	memberID := repo.addMember("Ada")
	svc := newService(repo, &fakeRecorder{}, nil)

	_, err := svc.Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.AddDate(0, 0, 17) }

	overdue, err := svc.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.True(t, overdue[0].Overdue)
	assert.Equal(t, 3, overdue[0].DaysOverdue)

	summary, err := svc.OverdueSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.True(t, decimal.RequireFromString("1.50").Equal(summary.TotalFines))
}

func TestExportExcel(t *testing.T) {
	repo := newFakeRepo()
	bookID := repo.addBook("Dune", 2)
	memberID := repo.addMember("Ada")
	svc := newService(repo, &fakeRecorder{}, nil)

	_, err := svc.Issue(context.Background(), bookID, memberID)
	require.NoError(t, err)

	f, err := svc.ExportExcel(context.Background(), model.ListFilter{})
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(exportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	status, err := f.GetCellValue(exportSheet, "I2")
	require.NoError(t, err)
	assert.Equal(t, "active", status)
}
