package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book/model"
)

var (
	sqlLockBook     = regexp.QuoteMeta(`FROM books WHERE id = $1 FOR UPDATE`)
	sqlInsertBook   = regexp.QuoteMeta(`INSERT INTO books (`)
	sqlFindBook     = regexp.QuoteMeta(`FROM books WHERE id = $1`)
	sqlUpdateBook   = regexp.QuoteMeta(`RETURNING updated_at`)
	sqlActiveLoans  = regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM transactions WHERE book_id = $1 AND status = 'active')`)
	sqlDeleteBook   = regexp.QuoteMeta(`DELETE FROM books WHERE id = $1`)
	sqlInsertTomb   = regexp.QuoteMeta(`INSERT INTO deleted_books (id, isbn, title, author)`)
	bookColumnNames = []string{
		"id", "title", "author", "isbn", "category", "image", "year",
		"total_copies", "available_copies", "created_at", "updated_at",
	}
	createdAt = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, RepositoryInterface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func lockedRow(id uuid.UUID, total, available int) *pgxmock.Rows {
	return pgxmock.NewRows(bookColumnNames).AddRow(
		id, "Dune", "Frank Herbert", model.OptionalString("9780441013593"), model.OptionalString("Fiction"), nil, nil,
		total, available, createdAt, createdAt,
	)
}

func TestUpdate_WritesBackTheLockedRow(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	updatedAt := createdAt.Add(time.Hour)
	title := "Dune Messiah"

	mock.ExpectBegin()
	// Two copies went out after the caller last read the book.
	mock.ExpectQuery(sqlLockBook).WithArgs(id).WillReturnRows(lockedRow(id, 3, 1))
	mock.ExpectQuery(sqlUpdateBook).
		WithArgs(id, title, "Frank Herbert", model.OptionalString("9780441013593"), model.OptionalString("Fiction"), (*string)(nil), (*int)(nil), 3, 1).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
	mock.ExpectCommit()

	book, err := repo.Update(context.Background(), id, model.UpdateBookRequest{Title: &title}.Apply)
	require.NoError(t, err)
	assert.Equal(t, title, book.Title)
	assert.Equal(t, 3, book.TotalCopies)
	assert.Equal(t, 1, book.AvailableCopies)
	assert.Equal(t, updatedAt, book.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ApplyErrorRollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	total := 1

	mock.ExpectBegin()
	mock.ExpectQuery(sqlLockBook).WithArgs(id).WillReturnRows(lockedRow(id, 3, 1))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), id, model.UpdateBookRequest{TotalCopies: &total}.Apply)
	assert.ErrorIs(t, err, model.ErrCopiesBelowLoaned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlLockBook).WithArgs(id).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), id, func(*model.Book) error { return nil })
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithTombstone_ActiveLoanRollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlLockBook).WithArgs(id).WillReturnRows(lockedRow(id, 3, 2))
	mock.ExpectQuery(sqlActiveLoans).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.DeleteWithTombstone(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrBookHasActiveLoans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithTombstone_SnapshotsLockedRow(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	deletedAt := createdAt.AddDate(0, 1, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlLockBook).WithArgs(id).WillReturnRows(lockedRow(id, 3, 3))
	mock.ExpectQuery(sqlActiveLoans).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(sqlDeleteBook).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(sqlInsertTomb).
		WithArgs(pgxmock.AnyArg(), "9780441013593", "Dune", "Frank Herbert").
		WillReturnRows(pgxmock.NewRows([]string{"deleted_at"}).AddRow(deletedAt))
	mock.ExpectCommit()

	rec, err := repo.DeleteWithTombstone(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "9780441013593", rec.ISBN)
	assert.Equal(t, "Dune", rec.Title)
	assert.Equal(t, deletedAt, rec.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateThenFind_NullOptionalFieldsRoundTrip(t *testing.T) {
	mock, repo := newMockRepo(t)
	book := model.CreateBookRequest{Title: "Dune", Author: "Frank Herbert"}.ToBook()

	mock.ExpectQuery(sqlInsertBook).
		WithArgs(pgxmock.AnyArg(), "Dune", "Frank Herbert", (*string)(nil), (*string)(nil), (*string)(nil), (*int)(nil), 1, 1).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, createdAt))
	require.NoError(t, repo.Create(context.Background(), book))

	mock.ExpectQuery(sqlFindBook).WithArgs(book.ID).
		WillReturnRows(pgxmock.NewRows(bookColumnNames).AddRow(
			book.ID, "Dune", "Frank Herbert", nil, nil, nil, nil, 1, 1, createdAt, createdAt,
		))
	found, err := repo.FindByID(context.Background(), book.ID)
	require.NoError(t, err)

	assert.Equal(t, book, found)
	assert.Nil(t, found.ISBN)
	assert.Nil(t, found.Category)
	assert.Nil(t, found.Image)
	assert.Nil(t, found.Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}
