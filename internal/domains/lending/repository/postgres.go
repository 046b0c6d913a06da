package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/lending/model"
	"library-backend/internal/shared"
	"library-backend/pkg/database"
)

const pgCheckViolation = "23514"

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool database.Querier) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ========================================
// ISSUE / RETURN
// ========================================

func (r *postgresRepository) Issue(ctx context.Context, bookID, memberID uuid.UUID, borrowedAt, dueAt time.Time) (*model.Transaction, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Transaction, error) {
		// 1. Lock book row, serializes concurrent issues of the same book
		var available int
		err := tx.QueryRow(ctx,
			`SELECT available_copies FROM books WHERE id = $1 FOR UPDATE`, bookID,
		).Scan(&available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.NewBookUnavailableError(bookID)
			}
			return nil, shared.StoreError("lock book", err)
		}
		if available <= 0 {
			return nil, model.NewBookUnavailableError(bookID)
		}

		// 2. Member must exist; the share lock blocks a concurrent member delete
		var lockedMember uuid.UUID
		err = tx.QueryRow(ctx,
			`SELECT id FROM members WHERE id = $1 FOR SHARE`, memberID,
		).Scan(&lockedMember)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.NewMemberNotFoundError(memberID)
			}
			return nil, shared.StoreError("check member", err)
		}

		// 3. Insert transaction
		t := &model.Transaction{
			ID:         uuid.New(),
			BookID:     bookID,
			MemberID:   memberID,
			BorrowDate: borrowedAt,
			DueDate:    dueAt,
			Status:     model.StatusActive,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (id, book_id, member_id, borrow_date, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.ID, t.BookID, t.MemberID, t.BorrowDate, t.DueDate, string(t.Status))
		if err != nil {
			return nil, shared.StoreError("insert transaction", err)
		}

		// 4. Decrement, guarded so it can never go negative
		tag, err := tx.Exec(ctx, `
			UPDATE books
			SET available_copies = available_copies - 1, updated_at = NOW()
			WHERE id = $1 AND available_copies > 0
		`, bookID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
				return nil, model.NewInconsistentStateError("decrement violated copy check for book %s", bookID)
			}
			return nil, shared.StoreError("decrement copies", err)
		}
		if tag.RowsAffected() != 1 {
			return nil, model.NewInconsistentStateError("decrement applied to %d rows for book %s", tag.RowsAffected(), bookID)
		}

		return t, nil
	})
}

func (r *postgresRepository) Return(ctx context.Context, id uuid.UUID, returnedAt time.Time) (*model.ReturnOutcome, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.ReturnOutcome, error) {
		// 1. Lock transaction row
		var (
			t      model.Transaction
			status string
		)
		err := tx.QueryRow(ctx, `
			SELECT id, book_id, member_id, borrow_date, due_date, return_date, status
			FROM transactions
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(&t.ID, &t.BookID, &t.MemberID, &t.BorrowDate, &t.DueDate, &t.ReturnDate, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.NewTransactionNotFoundError(id)
			}
			return nil, shared.StoreError("lock transaction", err)
		}
		t.Status = model.Status(status)

		// 2. Returned transactions are immutable
		if !t.IsActive() {
			return nil, model.NewAlreadyReturnedError(id)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE transactions SET status = $2, return_date = $3 WHERE id = $1
		`, id, string(model.StatusReturned), returnedAt); err != nil {
			return nil, shared.StoreError("mark returned", err)
		}
		t.Status = model.StatusReturned
		t.ReturnDate = &returnedAt

		// 3. Restore one copy, capped at total_copies
		tag, err := tx.Exec(ctx, `
			UPDATE books
			SET available_copies = available_copies + 1, updated_at = NOW()
			WHERE id = $1 AND available_copies < total_copies
		`, t.BookID)
		if err != nil {
			return nil, shared.StoreError("increment copies", err)
		}

		restored := tag.RowsAffected() == 1
		if !restored {
			log.Warn().
				Str("transaction_id", id.String()).
				Str("book_id", t.BookID.String()).
				Msg("Book already at total copies, increment skipped on return")
		}

		return &model.ReturnOutcome{Transaction: t, CopyRestored: restored}, nil
	})
}

// ========================================
// QUERIES
// ========================================

func scanView(row pgx.Row) (*model.TransactionView, error) {
	var (
		v      model.TransactionView
		status string
	)
	err := row.Scan(
		&v.ID,
		&v.BookID,
		&v.MemberID,
		&v.BorrowDate,
		&v.DueDate,
		&v.ReturnDate,
		&status,
		&v.BookTitle,
		&v.BookAuthor,
		&v.MemberName,
		&v.MemberEmail,
	)
	if err != nil {
		return nil, err
	}
	v.Status = model.Status(status)
	return &v, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TransactionView, error) {
	query, args, err := buildFindQuery(id.String())
	if err != nil {
		return nil, shared.StoreError("build find query", err)
	}

	v, err := scanView(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewTransactionNotFoundError(id)
		}
		return nil, shared.StoreError("find transaction", err)
	}
	return v, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.TransactionView, int, error) {
	listSQL, listArgs, countSQL, countArgs, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, shared.StoreError("build list query", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, shared.StoreError("count transactions", err)
	}

	rows, err := r.pool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, shared.StoreError("list transactions", err)
	}
	defer rows.Close()

	views := make([]model.TransactionView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, 0, shared.StoreError("scan transaction", err)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.StoreError("iterate transactions", err)
	}
	return views, total, nil
}

func (r *postgresRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.TransactionView, error) {
	views, _, err := r.List(ctx, model.ListFilter{OverdueAt: &now, Sort: model.SortDueDateAsc})
	return views, err
}

func (r *postgresRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE status = $1`, string(model.StatusActive),
	).Scan(&n)
	if err != nil {
		return 0, shared.StoreError("count active transactions", err)
	}
	return n, nil
}
