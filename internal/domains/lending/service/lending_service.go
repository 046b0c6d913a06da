package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	activityModel "library-backend/internal/domains/activity/model"
	activityService "library-backend/internal/domains/activity/service"
	"library-backend/internal/domains/lending/model"
	"library-backend/internal/domains/lending/repository"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

// nameLookupTimeout bounds the post-commit title/name resolution for activity messages.
const nameLookupTimeout = 2 * time.Second

type lendingService struct {
	repo     repository.RepositoryInterface
	recorder activityService.Recorder
	cache    cache.Cache
	policy   model.Policy
	now      func() time.Time
}

func NewLendingService(
	repo repository.RepositoryInterface,
	recorder activityService.Recorder,
	cache cache.Cache,
	policy model.Policy,
) ServiceInterface {
	return &lendingService{
		repo:     repo,
		recorder: recorder,
		cache:    cache,
		policy:   policy,
		now:      time.Now,
	}
}

// ========================================
// ISSUE / RETURN
// ========================================

func (s *lendingService) Issue(ctx context.Context, bookID, memberID uuid.UUID) (*model.Transaction, error) {
	borrowedAt := s.now().UTC()
	dueAt := s.policy.DueDate(borrowedAt)

	t, err := s.repo.Issue(ctx, bookID, memberID, borrowedAt, dueAt)
	if err != nil {
		logFailure("issue", err, map[string]interface{}{
			"book_id":   bookID.String(),
			"member_id": memberID.String(),
		})
		return nil, err
	}

	log.Info().
		Str("transaction_id", t.ID.String()).
		Str("book_id", bookID.String()).
		Str("member_id", memberID.String()).
		Time("due_date", t.DueDate).
		Msg("Book issued")

	s.afterCommit(ctx, t, activityModel.TypeIssue)
	return t, nil
}

func (s *lendingService) Return(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	outcome, err := s.repo.Return(ctx, id, s.now().UTC())
	if err != nil {
		logFailure("return", err, map[string]interface{}{
			"transaction_id": id.String(),
		})
		return nil, err
	}

	t := &outcome.Transaction
	log.Info().
		Str("transaction_id", id.String()).
		Str("book_id", t.BookID.String()).
		Bool("copy_restored", outcome.CopyRestored).
		Msg("Book returned")

	s.afterCommit(ctx, t, activityModel.TypeReturn)
	return t, nil
}

// logFailure logs invariant violations distinctly from ordinary rejections.
func logFailure(op string, err error, fields map[string]interface{}) {
	switch {
	case model.IsInconsistentState(err):
		log.Error().
			Err(err).
			Fields(fields).
			Bool("invariant_violation", true).
			Str("op", op).
			Msg("Lending invariant violated, unit of work rolled back")
	case shared.IsStoreFailure(err):
		log.Error().Err(err).Fields(fields).Str("op", op).Msg("Lending store failure")
	default:
		log.Info().Err(err).Fields(fields).Str("op", op).Msg("Lending request rejected")
	}
}

// afterCommit records the activity entry and drops cached dashboard data.
// Name lookups are best-effort; failures fall back to "Unknown".
func (s *lendingService) afterCommit(ctx context.Context, t *model.Transaction, kind activityModel.Type) {
	title, name := s.resolveNames(ctx, t.ID)

	msg := activityModel.IssueMessage(title, name)
	if kind == activityModel.TypeReturn {
		msg = activityModel.ReturnMessage(title, name)
	}

	s.recorder.Record(ctx, activityModel.Entry{
		Type:     kind,
		BookID:   activityModel.Ref(t.BookID),
		MemberID: activityModel.Ref(t.MemberID),
		Message:  msg,
	})

	if s.cache != nil {
		if err := s.cache.DeletePattern(context.WithoutCancel(ctx), shared.CacheKeyDashboardPattern); err != nil {
			log.Debug().Err(err).Msg("dashboard cache invalidation failed")
		}
		if err := s.cache.Delete(context.WithoutCancel(ctx), shared.CacheKeyOverdueSummary); err != nil {
			log.Debug().Err(err).Msg("overdue summary invalidation failed")
		}
	}
}

func (s *lendingService) resolveNames(ctx context.Context, id uuid.UUID) (title, name string) {
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), nameLookupTimeout)
	defer cancel()

	v, err := s.repo.FindByID(lookupCtx, id)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", id.String()).Msg("Could not resolve names for activity message")
		return activityModel.UnknownName, activityModel.UnknownName
	}
	return activityModel.DisplayName(v.BookTitle), activityModel.DisplayName(v.MemberName)
}

// ========================================
// QUERIES
// ========================================

func (s *lendingService) Get(ctx context.Context, id uuid.UUID) (*model.TransactionView, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.policy.Assess(v, s.now())
	return v, nil
}

func (s *lendingService) ListActive(ctx context.Context, limit, offset int) ([]model.TransactionView, int, error) {
	status := model.StatusActive
	return s.ListAll(ctx, model.ListFilter{
		Status: &status,
		Sort:   model.SortDueDateAsc,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *lendingService) ListAll(ctx context.Context, filter model.ListFilter) ([]model.TransactionView, int, error) {
	views, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	s.assessAll(views)
	return views, total, nil
}

func (s *lendingService) ListOverdue(ctx context.Context) ([]model.TransactionView, error) {
	views, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	s.assessAll(views)
	return views, nil
}

// OverdueSummary counts overdue loans and sums their fines as of now.
func (s *lendingService) OverdueSummary(ctx context.Context) (*model.OverdueSummary, error) {
	views, err := s.ListOverdue(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, v := range views {
		total = total.Add(v.Fine)
	}

	return &model.OverdueSummary{
		Count:      len(views),
		TotalFines: total,
		ScannedAt:  s.now().UTC(),
	}, nil
}

func (s *lendingService) assessAll(views []model.TransactionView) {
	now := s.now()
	for i := range views {
		s.policy.Assess(&views[i], now)
	}
}
