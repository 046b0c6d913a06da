package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/shared"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/database"
)

const memberColumns = `id, name, email, phone, address, join_date, updated_at`

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool database.Querier) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanMember(row pgx.Row) (*model.Member, error) {
	var m model.Member
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.JoinDate, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts member. A non-zero JoinDate is kept (importer backfill), otherwise NOW().
func (r *postgresRepository) Create(ctx context.Context, member *model.Member) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}

	query := `
		INSERT INTO members (id, name, email, phone, address, join_date)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
		RETURNING join_date, updated_at
	`

	var joinDate interface{}
	if !member.JoinDate.IsZero() {
		joinDate = member.JoinDate
	}

	err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.Name,
		member.Email,
		member.Phone,
		member.Address,
		joinDate,
	).Scan(&member.JoinDate, &member.UpdatedAt)
	if err != nil {
		return shared.StoreError("create member", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewMemberNotFoundError(id)
		}
		return nil, shared.StoreError("find member", err)
	}
	return m, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListMembersFilter) ([]model.Member, int, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, utils.LikePattern(s))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}
	where := utils.WhereClause(clauses)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.StoreError("count members", err)
	}

	query := `SELECT ` + memberColumns + ` FROM members` + where + ` ORDER BY name ASC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	members, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]model.Member, error) {
	return r.query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY join_date ASC`)
}

func (r *postgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]model.Member, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreError("list members", err)
	}
	defer rows.Close()

	members := make([]model.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, shared.StoreError("scan member", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("iterate members", err)
	}
	return members, nil
}

func (r *postgresRepository) Update(ctx context.Context, member *model.Member) error {
	query := `
		UPDATE members SET
			name = $2,
			email = $3,
			phone = $4,
			address = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.Name,
		member.Email,
		member.Phone,
		member.Address,
	).Scan(&member.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewMemberNotFoundError(member.ID)
		}
		return shared.StoreError("update member", err)
	}
	return nil
}

// Delete locks the member row and refuses while any loan is active. Issue
// holds a share lock on the same row, so the two cannot interleave.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM members WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.NewMemberNotFoundError(id)
			}
			return shared.StoreError("lock member", err)
		}

		var active bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM transactions WHERE member_id = $1 AND status = 'active')`, id,
		).Scan(&active)
		if err != nil {
			return shared.StoreError("check active loans", err)
		}
		if active {
			return model.ErrMemberHasActiveLoans
		}

		if _, err := tx.Exec(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
			return shared.StoreError("delete member", err)
		}
		return nil
	})
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, shared.StoreError("count members", err)
	}
	return n, nil
}

func (r *postgresRepository) ExistsByEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	found := make(map[string]bool, len(emails))

	clean := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			clean = append(clean, e)
		}
	}
	if len(clean) == 0 {
		return found, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT LOWER(email) FROM members WHERE LOWER(email) = ANY($1)`, pq.Array(clean))
	if err != nil {
		return nil, shared.StoreError("lookup emails", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, shared.StoreError("scan email", err)
		}
		found[email] = true
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StoreError("iterate emails", err)
	}
	return found, nil
}
