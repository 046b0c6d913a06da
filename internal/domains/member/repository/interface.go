package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
)

type RepositoryInterface interface {
	Create(ctx context.Context, member *model.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	List(ctx context.Context, filter model.ListMembersFilter) ([]model.Member, int, error)
	Update(ctx context.Context, member *model.Member) error
	// Delete fails with ErrMemberHasActiveLoans while a loan is active.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	// ExistsByEmails reports which addresses are already registered (case-insensitive).
	ExistsByEmails(ctx context.Context, emails []string) (map[string]bool, error)
	ListAll(ctx context.Context) ([]model.Member, error)
}
