package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/lending/model"
)

// RepositoryInterface owns the transactions table and the copy counters it moves.
type RepositoryInterface interface {
	// Issue locks the book row, inserts an active transaction and decrements
	// available_copies, all in one database transaction.
	Issue(ctx context.Context, bookID, memberID uuid.UUID, borrowedAt, dueAt time.Time) (*model.Transaction, error)
	// Return locks the transaction row, marks it returned and restores one copy
	// unless the book is already at total_copies.
	Return(ctx context.Context, id uuid.UUID, returnedAt time.Time) (*model.ReturnOutcome, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.TransactionView, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.TransactionView, int, error)
	// ListOverdue returns active loans due before now, most overdue first.
	ListOverdue(ctx context.Context, now time.Time) ([]model.TransactionView, error)
	CountActive(ctx context.Context) (int, error)
}
