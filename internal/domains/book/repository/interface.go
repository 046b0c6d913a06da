package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// RepositoryInterface is the data access contract for books and their tombstones.
type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.ListBooksFilter) ([]model.Book, int, error)
	// Update applies a read-modify-write to the locked book row in one transaction.
	Update(ctx context.Context, id uuid.UUID, apply func(*model.Book) error) (*model.Book, error)
	// DeleteWithTombstone removes the book and appends a DeletionRecord in one
	// transaction. It fails with ErrBookHasActiveLoans while a loan is active.
	DeleteWithTombstone(ctx context.Context, id uuid.UUID) (*model.DeletionRecord, error)
	SetImage(ctx context.Context, id uuid.UUID, image string) error
	Count(ctx context.Context) (int, error)

	// Bulk import lookups
	ExistsByISBNs(ctx context.Context, isbns []string) (map[string]bool, error)
	ExistsByTitleAuthor(ctx context.Context, title, author string) (bool, error)
	IsDeleted(ctx context.Context, isbn, title, author string) (bool, error)
	ListDeleted(ctx context.Context, limit, offset int) ([]model.DeletionRecord, int, error)
}
