package repository

import (
	"context"

	"library-backend/internal/domains/activity/model"
)

type RepositoryInterface interface {
	// Insert is idempotent on entry.ID so a retried task never duplicates a row.
	Insert(ctx context.Context, entry *model.Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]model.EntryView, error)
	// DeleteAll empties the log. Only the backfill tool uses it.
	DeleteAll(ctx context.Context) (int64, error)
}
