package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	activityModel "library-backend/internal/domains/activity/model"
	activityService "library-backend/internal/domains/activity/service"
	"library-backend/internal/domains/member/model"
	"library-backend/internal/domains/member/repository"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

type memberService struct {
	repo     repository.RepositoryInterface
	recorder activityService.Recorder
	cache    cache.Cache
}

func NewMemberService(
	repo repository.RepositoryInterface,
	recorder activityService.Recorder,
	cache cache.Cache,
) ServiceInterface {
	return &memberService{
		repo:     repo,
		recorder: recorder,
		cache:    cache,
	}
}

func (s *memberService) Create(ctx context.Context, req model.CreateMemberRequest) (*model.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	member := req.ToMember()
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}

	log.Info().Str("member_id", member.ID.String()).Msg("Member created")

	s.recorder.Record(ctx, activityModel.Entry{
		Type:     activityModel.TypeAddMember,
		MemberID: activityModel.Ref(member.ID),
		Message:  activityModel.AddMemberMessage(member.Name),
	})

	return member, nil
}

func (s *memberService) Get(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *memberService) List(ctx context.Context, filter model.ListMembersFilter) ([]model.Member, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *memberService) Update(ctx context.Context, id uuid.UUID, req model.UpdateMemberRequest) (*model.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(member)
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("member_id", id.String()).Msg("Member deleted")

	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, shared.CacheKeyDashboardPattern); err != nil {
			log.Debug().Err(err).Msg("dashboard cache invalidation failed")
		}
	}
	return nil
}
