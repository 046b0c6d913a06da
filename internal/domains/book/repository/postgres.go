package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/database"
)

const pgCheckViolation = "23514"

const bookColumns = `
	id, title, author, isbn, category, image, year,
	total_copies, available_copies, created_at, updated_at
`

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool database.Querier) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.ISBN,
		&b.Category,
		&b.Image,
		&b.Year,
		&b.TotalCopies,
		&b.AvailableCopies,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// mapWriteError turns a copy-count CHECK violation into the domain error.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return fmt.Errorf("%s: %w", op, model.ErrAvailableExceedsTotal)
	}
	return shared.StoreError(op, err)
}

func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	query := `
		INSERT INTO books (
			id, title, author, isbn, category, image, year,
			total_copies, available_copies
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Category,
		book.Image,
		book.Year,
		book.TotalCopies,
		book.AvailableCopies,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return mapWriteError("create book", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, shared.StoreError("find book", err)
	}
	return book, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListBooksFilter) ([]model.Book, int, error) {
	var (
		clauses []string
		args    []interface{}
	)

	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, utils.LikePattern(s))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR isbn ILIKE $%d)", n, n, n))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Available != nil {
		if *filter.Available {
			clauses = append(clauses, "available_copies > 0")
		} else {
			clauses = append(clauses, "available_copies = 0")
		}
	}
	where := utils.WhereClause(clauses)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.StoreError("count books", err)
	}

	query := `SELECT ` + bookColumns + ` FROM books` + where + ` ORDER BY title ASC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.StoreError("list books", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, shared.StoreError("scan book", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.StoreError("iterate books", err)
	}

	return books, total, nil
}

// Update locks the book row, lets apply mutate the locked copy and writes it
// back in the same transaction. Issue and Return lock the same row.
func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, apply func(*model.Book) error) (*model.Book, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		book, err := lockBook(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		if err := apply(book); err != nil {
			return nil, err
		}

		err = tx.QueryRow(ctx, `
			UPDATE books SET
				title = $2,
				author = $3,
				isbn = $4,
				category = $5,
				image = $6,
				year = $7,
				total_copies = $8,
				available_copies = $9,
				updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`,
			book.ID,
			book.Title,
			book.Author,
			book.ISBN,
			book.Category,
			book.Image,
			book.Year,
			book.TotalCopies,
			book.AvailableCopies,
		).Scan(&book.UpdatedAt)
		if err != nil {
			return nil, mapWriteError("update book", err)
		}
		return book, nil
	})
}

// DeleteWithTombstone locks the book, refuses while any loan is active, then
// snapshots it into deleted_books and removes it.
func (r *postgresRepository) DeleteWithTombstone(ctx context.Context, id uuid.UUID) (*model.DeletionRecord, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.DeletionRecord, error) {
		book, err := lockBook(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		var active bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM transactions WHERE book_id = $1 AND status = 'active')`, id,
		).Scan(&active)
		if err != nil {
			return nil, shared.StoreError("check active loans", err)
		}
		if active {
			return nil, model.ErrBookHasActiveLoans
		}

		if _, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
			return nil, shared.StoreError("delete book", err)
		}

		rec := &model.DeletionRecord{
			ID:     uuid.New(),
			ISBN:   model.StringValue(book.ISBN),
			Title:  book.Title,
			Author: book.Author,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO deleted_books (id, isbn, title, author)
			VALUES ($1, $2, $3, $4)
			RETURNING deleted_at
		`, rec.ID, rec.ISBN, rec.Title, rec.Author).Scan(&rec.DeletedAt)
		if err != nil {
			return nil, shared.StoreError("insert tombstone", err)
		}

		return rec, nil
	})
}

func lockBook(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Book, error) {
	book, err := scanBook(tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, shared.StoreError("lock book", err)
	}
	return book, nil
}

func (r *postgresRepository) SetImage(ctx context.Context, id uuid.UUID, image string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET image = $2, updated_at = NOW() WHERE id = $1`, id, image)
	if err != nil {
		return shared.StoreError("set book image", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewBookNotFoundError(id)
	}
	return nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, shared.StoreError("count books", err)
	}
	return n, nil
}

// ExistsByISBNs reports which of isbns are already catalogued. Blank ISBNs are ignored.
func (r *postgresRepository) ExistsByISBNs(ctx context.Context, isbns []string) (map[string]bool, error) {
	found := make(map[string]bool, len(isbns))

	clean := make([]string, 0, len(isbns))
	for _, isbn := range isbns {
		if isbn = strings.TrimSpace(isbn); isbn != "" {
			clean = append(clean, isbn)
		}
	}
	if len(clean) == 0 {
		return found, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT isbn FROM books WHERE isbn = ANY($1)`, pq.Array(clean))
	if err != nil {
		return nil, shared.StoreError("lookup isbns", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, shared.StoreError("scan isbn", err)
		}
		found[isbn] = true
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("iterate isbns", err)
	}
	return found, nil
}

func (r *postgresRepository) ExistsByTitleAuthor(ctx context.Context, title, author string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM books
			WHERE LOWER(title) = LOWER($1) AND LOWER(author) = LOWER($2)
		)
	`, title, author).Scan(&exists)
	if err != nil {
		return false, shared.StoreError("lookup title/author", err)
	}
	return exists, nil
}

// IsDeleted matches a tombstone by ISBN when one is given, otherwise by title and author.
func (r *postgresRepository) IsDeleted(ctx context.Context, isbn, title, author string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM deleted_books
			WHERE ($1 <> '' AND isbn = $1)
			   OR (LOWER(title) = LOWER($2) AND LOWER(author) = LOWER($3))
		)
	`, strings.TrimSpace(isbn), title, author).Scan(&exists)
	if err != nil {
		return false, shared.StoreError("lookup tombstone", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListDeleted(ctx context.Context, limit, offset int) ([]model.DeletionRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deleted_books`).Scan(&total); err != nil {
		return nil, 0, shared.StoreError("count tombstones", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, isbn, title, author, deleted_at
		FROM deleted_books
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, shared.StoreError("list tombstones", err)
	}
	defer rows.Close()

	records := make([]model.DeletionRecord, 0)
	for rows.Next() {
		var rec model.DeletionRecord
		if err := rows.Scan(&rec.ID, &rec.ISBN, &rec.Title, &rec.Author, &rec.DeletedAt); err != nil {
			return nil, 0, shared.StoreError("scan tombstone", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.StoreError("iterate tombstones", err)
	}
	return records, total, nil
}
