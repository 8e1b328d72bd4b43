package accounts

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]BankAccountWithBank, int, error)
	Get(ctx context.Context, id int64) (BankAccount, error)
	GetWithBank(ctx context.Context, id int64) (BankAccountWithBank, error)
	Create(ctx context.Context, account BankAccount) (BankAccount, error)
	Update(ctx context.Context, account BankAccount) error
	Delete(ctx context.Context, id int64) error
	CountDependents(ctx context.Context, accountID int64) (int, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const accountColumns = `id, bank_id, account_no, account_name, account_type, balance, status, created_at, updated_at`

func scanAccount(row pgx.Row) (BankAccount, error) {
	var a BankAccount
	err := row.Scan(&a.ID, &a.BankID, &a.AccountNo, &a.AccountName, &a.AccountType,
		&a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BankAccount{}, shared.ErrNotFound
	}
	return a, err
}

func (r *pgRepository) List(ctx context.Context, filters mdshared.ListFilters) ([]BankAccountWithBank, int, error) {
	where := ``
	var args []any
	if filters.Search != "" {
		where = ` WHERE (ba.account_no ILIKE $1 OR ba.account_name ILIKE $1 OR b.bank_name ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM bank_accounts ba JOIN banks b ON b.id = ba.bank_id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
SELECT ba.id, ba.bank_id, ba.account_no, ba.account_name, ba.account_type,
       ba.balance, ba.status, ba.created_at, ba.updated_at, b.bank_name
FROM bank_accounts ba
JOIN banks b ON b.id = ba.bank_id` + where + `
ORDER BY ba.account_no`
	args = append(args, filters.Limit, filters.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []BankAccountWithBank
	for rows.Next() {
		var a BankAccountWithBank
		if err := rows.Scan(&a.ID, &a.BankID, &a.AccountNo, &a.AccountName, &a.AccountType,
			&a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.BankName); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (BankAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *pgRepository) GetWithBank(ctx context.Context, id int64) (BankAccountWithBank, error) {
	var a BankAccountWithBank
	err := r.pool.QueryRow(ctx, `
SELECT ba.id, ba.bank_id, ba.account_no, ba.account_name, ba.account_type,
       ba.balance, ba.status, ba.created_at, ba.updated_at, b.bank_name
FROM bank_accounts ba
JOIN banks b ON b.id = ba.bank_id
WHERE ba.id = $1`, id).
		Scan(&a.ID, &a.BankID, &a.AccountNo, &a.AccountName, &a.AccountType,
			&a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.BankName)
	if errors.Is(err, pgx.ErrNoRows) {
		return BankAccountWithBank{}, shared.ErrNotFound
	}
	return a, err
}

func (r *pgRepository) Create(ctx context.Context, account BankAccount) (BankAccount, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO bank_accounts (bank_id, account_no, account_name, account_type, balance, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
RETURNING id, created_at, updated_at`,
		account.BankID, account.AccountNo, account.AccountName, account.AccountType,
		account.Balance, account.Status).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return BankAccount{}, mapConstraintErr(err)
	}
	return account, nil
}

func (r *pgRepository) Update(ctx context.Context, account BankAccount) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE bank_accounts
SET bank_id = $1, account_no = $2, account_name = $3, account_type = $4,
    balance = $5, status = $6, updated_at = now()
WHERE id = $7`,
		account.BankID, account.AccountNo, account.AccountName, account.AccountType,
		account.Balance, account.Status, account.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountDependents counts cheques and cheque books still referencing the
// account.
func (r *pgRepository) CountDependents(ctx context.Context, accountID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT (SELECT COUNT(*) FROM cheques WHERE bank_account_id = $1)
     + (SELECT COUNT(*) FROM cheque_books WHERE bank_account_id = $1)`, accountID).Scan(&count)
	return count, err
}

func mapConstraintErr(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
