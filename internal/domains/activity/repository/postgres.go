package repository

import (
	"context"

	"library-backend/internal/domains/activity/model"
	"library-backend/internal/shared"
	"library-backend/pkg/database"
)

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool database.Querier) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Insert(ctx context.Context, entry *model.Entry) error {
	query := `
		INSERT INTO activity_log (id, type, book_id, member_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		string(entry.Type),
		entry.BookID,
		entry.MemberID,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		return shared.StoreError("insert activity", err)
	}
	return nil
}

func (r *postgresRepository) Recent(ctx context.Context, limit int) ([]model.EntryView, error) {
	query := `
		SELECT
			a.id, a.type, a.book_id, a.member_id, a.message, a.created_at,
			b.title, m.name
		FROM activity_log a
		LEFT JOIN books b ON b.id = a.book_id
		LEFT JOIN members m ON m.id = a.member_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, shared.StoreError("query recent activity", err)
	}
	defer rows.Close()

	entries := make([]model.EntryView, 0, limit)
	for rows.Next() {
		var (
			v       model.EntryView
			typeStr string
		)
		if err := rows.Scan(
			&v.ID,
			&typeStr,
			&v.BookID,
			&v.MemberID,
			&v.Message,
			&v.CreatedAt,
			&v.BookTitle,
			&v.MemberName,
		); err != nil {
			return nil, shared.StoreError("scan activity", err)
		}
		v.Type = model.Type(typeStr)
		entries = append(entries, v)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("iterate activity", err)
	}
	return entries, nil
}

func (r *postgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activity_log`)
	if err != nil {
		return 0, shared.StoreError("clear activity", err)
	}
	return tag.RowsAffected(), nil
}
