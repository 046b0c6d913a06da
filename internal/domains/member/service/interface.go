package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
)

type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateMemberRequest) (*model.Member, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Member, error)
	List(ctx context.Context, filter model.ListMembersFilter) ([]model.Member, int, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateMemberRequest) (*model.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
