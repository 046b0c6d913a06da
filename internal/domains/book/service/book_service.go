package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	activityModel "library-backend/internal/domains/activity/model"
	activityService "library-backend/internal/domains/activity/service"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/storage"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

type bookService struct {
	repo      repository.RepositoryInterface
	recorder  activityService.Recorder
	cache     cache.Cache
	storage   CoverStorage
	processor CoverProcessor
	now       func() time.Time
}

// Options carries the optional collaborators. A nil Storage disables cover uploads.
type Options struct {
	Cache     cache.Cache
	Storage   CoverStorage
	Processor CoverProcessor
}

func NewBookService(
	repo repository.RepositoryInterface,
	recorder activityService.Recorder,
	opts Options,
) ServiceInterface {
	return &bookService{
		repo:      repo,
		recorder:  recorder,
		cache:     opts.Cache,
		storage:   opts.Storage,
		processor: opts.Processor,
		now:       time.Now,
	}
}

func (s *bookService) Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book := req.ToBook()
	if err := book.CheckCopies(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Info().
		Str("book_id", book.ID.String()).
		Str("title", book.Title).
		Int("copies", book.TotalCopies).
		Msg("Book created")

	s.recorder.Record(ctx, activityModel.Entry{
		Type:    activityModel.TypeAddBook,
		BookID:  activityModel.Ref(book.ID),
		Message: activityModel.AddBookMessage(book.Title),
	})

	return book, nil
}

func (s *bookService) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *bookService) List(ctx context.Context, filter model.ListBooksFilter) ([]model.Book, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *bookService) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.Update(ctx, id, req.Apply)
	if err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return book, nil
}

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) (*model.DeletionRecord, error) {
	rec, err := s.repo.DeleteWithTombstone(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("book_id", id.String()).
		Str("isbn", rec.ISBN).
		Str("title", rec.Title).
		Msg("Book deleted")

	if s.storage != nil {
		if err := s.storage.DeleteByPrefix(ctx, storage.CoverPrefix(id.String())); err != nil {
			log.Warn().Err(err).Str("book_id", id.String()).Msg("Failed to remove book covers")
		}
	}

	s.invalidateDashboard(ctx)
	return rec, nil
}

func (s *bookService) UploadCover(ctx context.Context, id uuid.UUID, data []byte) (*model.Book, error) {
	if s.storage == nil || s.processor == nil {
		return nil, model.ErrCoverStorageDisabled
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cover, err := s.processor.ResizeCover(data)
	if err != nil {
		return nil, model.NewInvalidCoverError(err)
	}

	key := storage.CoverKey(id.String(), s.now().UnixNano())
	url, err := s.storage.Upload(ctx, key, cover, "image/jpeg")
	if err != nil {
		return nil, shared.StoreError("upload cover", err)
	}

	if err := s.repo.SetImage(ctx, id, url); err != nil {
		return nil, err
	}
	book.Image = &url

	log.Info().Str("book_id", id.String()).Str("key", key).Msg("Book cover uploaded")
	return book, nil
}

func (s *bookService) ListDeleted(ctx context.Context, limit, offset int) ([]model.DeletionRecord, int, error) {
	return s.repo.ListDeleted(ctx, limit, offset)
}

func (s *bookService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, shared.CacheKeyDashboardPattern); err != nil {
		log.Debug().Err(err).Msg("dashboard cache invalidation failed")
	}
}
