package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.ListBooksFilter) ([]model.Book, int, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.DeletionRecord, error)
	UploadCover(ctx context.Context, id uuid.UUID, data []byte) (*model.Book, error)
	ListDeleted(ctx context.Context, limit, offset int) ([]model.DeletionRecord, int, error)
}

// CoverStorage is satisfied by *storage.MinIOStorage.
type CoverStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// CoverProcessor is satisfied by *storage.ImageProcessor.
type CoverProcessor interface {
	ResizeCover(data []byte) ([]byte, error)
}
