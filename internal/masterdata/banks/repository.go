package banks

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chequeflow/chequeflow/internal/masterdata/mdshared"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Bank, int, error)
	Get(ctx context.Context, id int64) (Bank, error)
	Create(ctx context.Context, bank Bank) (Bank, error)
	Update(ctx context.Context, bank Bank) error
	Delete(ctx context.Context, id int64) error
	CountAccounts(ctx context.Context, bankID int64) (int, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const bankColumns = `id, bank_name, branch, status, created_at, updated_at`

func scanBank(row pgx.Row) (Bank, error) {
	var b Bank
	err := row.Scan(&b.ID, &b.BankName, &b.Branch, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bank{}, shared.ErrNotFound
	}
	return b, err
}

func (r *pgRepository) List(ctx context.Context, filters mdshared.ListFilters) ([]Bank, int, error) {
	where := ``
	var args []any
	if filters.Search != "" {
		where = ` WHERE (bank_name ILIKE $1 OR branch ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM banks`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bankColumns + ` FROM banks` + where + ` ORDER BY bank_name`
	args = append(args, filters.Limit, filters.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var banks []Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, 0, err
		}
		banks = append(banks, b)
	}
	return banks, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Bank, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE id = $1`, id)
	return scanBank(row)
}

func (r *pgRepository) Create(ctx context.Context, bank Bank) (Bank, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO banks (bank_name, branch, status, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id, created_at, updated_at`,
		bank.BankName, bank.Branch, bank.Status).
		Scan(&bank.ID, &bank.CreatedAt, &bank.UpdatedAt)
	if err != nil {
		return Bank{}, mapConstraintErr(err)
	}
	return bank, nil
}

func (r *pgRepository) Update(ctx context.Context, bank Bank) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE banks SET bank_name = $1, branch = $2, status = $3, updated_at = now() WHERE id = $4`,
		bank.BankName, bank.Branch, bank.Status, bank.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM banks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) CountAccounts(ctx context.Context, bankID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bank_accounts WHERE bank_id = $1`, bankID).Scan(&count)
	return count, err
}

func mapConstraintErr(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
