package chequebook

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chequeflow/chequeflow/internal/platform/db"
	"github.com/chequeflow/chequeflow/internal/shared"
)

// Repository defines cheque book data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	Get(ctx context.Context, id int64) (ChequeBook, error)
	GetWithAccount(ctx context.Context, id int64) (ChequeBookWithAccount, error)
	List(ctx context.Context) ([]ChequeBookWithAccount, error)
	ListByAccount(ctx context.Context, bankAccountID int64) ([]ChequeBookWithAccount, error)
	BookNoExists(ctx context.Context, bankAccountID int64, bookNo string, excludeID int64) (bool, error)
	CountCheques(ctx context.Context, bookID int64) (int, error)

	Create(ctx context.Context, book ChequeBook) (ChequeBook, error)
	Update(ctx context.Context, book ChequeBook) error
	Delete(ctx context.Context, id int64) error
}

// TxRepository defines the operations that participate in the sequencing
// transaction. GetForUpdate locks the book row so two concurrent issuances
// cannot hand out the same number.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (ChequeBook, error)
	Save(ctx context.Context, book ChequeBook) error
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const bookColumns = `id, bank_account_id, book_no, start_cheque_no, end_cheque_no, current_cheque_no, status, issued_date, created_at, updated_at`

func scanBook(row pgx.Row) (ChequeBook, error) {
	var b ChequeBook
	err := row.Scan(&b.ID, &b.BankAccountID, &b.BookNo, &b.StartChequeNo, &b.EndChequeNo,
		&b.CurrentChequeNo, &b.Status, &b.IssuedDate, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChequeBook{}, shared.ErrNotFound
	}
	return b, err
}

func (r *pgRepository) Get(ctx context.Context, id int64) (ChequeBook, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM cheque_books WHERE id = $1`, id)
	return scanBook(row)
}

func (r *pgRepository) GetWithAccount(ctx context.Context, id int64) (ChequeBookWithAccount, error) {
	var b ChequeBookWithAccount
	err := r.pool.QueryRow(ctx, `
SELECT cb.id, cb.bank_account_id, cb.book_no, cb.start_cheque_no, cb.end_cheque_no,
       cb.current_cheque_no, cb.status, cb.issued_date, cb.created_at, cb.updated_at,
       ba.account_no
FROM cheque_books cb
JOIN bank_accounts ba ON ba.id = cb.bank_account_id
WHERE cb.id = $1`, id).
		Scan(&b.ID, &b.BankAccountID, &b.BookNo, &b.StartChequeNo, &b.EndChequeNo,
			&b.CurrentChequeNo, &b.Status, &b.IssuedDate, &b.CreatedAt, &b.UpdatedAt, &b.AccountNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChequeBookWithAccount{}, shared.ErrNotFound
	}
	return b, err
}

func (r *pgRepository) List(ctx context.Context) ([]ChequeBookWithAccount, error) {
	return r.listWhere(ctx, ``)
}

func (r *pgRepository) ListByAccount(ctx context.Context, bankAccountID int64) ([]ChequeBookWithAccount, error) {
	return r.listWhere(ctx, `WHERE cb.bank_account_id = $1`, bankAccountID)
}

func (r *pgRepository) listWhere(ctx context.Context, where string, args ...any) ([]ChequeBookWithAccount, error) {
	rows, err := r.pool.Query(ctx, `
SELECT cb.id, cb.bank_account_id, cb.book_no, cb.start_cheque_no, cb.end_cheque_no,
       cb.current_cheque_no, cb.status, cb.issued_date, cb.created_at, cb.updated_at,
       ba.account_no
FROM cheque_books cb
JOIN bank_accounts ba ON ba.id = cb.bank_account_id
`+where+`
ORDER BY cb.issued_date DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []ChequeBookWithAccount
	for rows.Next() {
		var b ChequeBookWithAccount
		if err := rows.Scan(&b.ID, &b.BankAccountID, &b.BookNo, &b.StartChequeNo, &b.EndChequeNo,
			&b.CurrentChequeNo, &b.Status, &b.IssuedDate, &b.CreatedAt, &b.UpdatedAt, &b.AccountNo); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *pgRepository) BookNoExists(ctx context.Context, bankAccountID int64, bookNo string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cheque_books WHERE bank_account_id = $1 AND book_no = $2 AND id <> $3)`,
		bankAccountID, bookNo, excludeID).Scan(&exists)
	return exists, err
}

func (r *pgRepository) CountCheques(ctx context.Context, bookID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cheques WHERE cheque_book_id = $1`, bookID).Scan(&count)
	return count, err
}

func (r *pgRepository) Create(ctx context.Context, book ChequeBook) (ChequeBook, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO cheque_books (bank_account_id, book_no, start_cheque_no, end_cheque_no, current_cheque_no, status, issued_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING id, created_at, updated_at`,
		book.BankAccountID, book.BookNo, book.StartChequeNo, book.EndChequeNo,
		book.CurrentChequeNo, book.Status, book.IssuedDate).
		Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return ChequeBook{}, mapConstraintErr(err)
	}
	return book, nil
}

func (r *pgRepository) Update(ctx context.Context, book ChequeBook) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE cheque_books
SET bank_account_id = $1, book_no = $2, start_cheque_no = $3, end_cheque_no = $4,
    current_cheque_no = $5, status = $6, issued_date = $7, updated_at = now()
WHERE id = $8`,
		book.BankAccountID, book.BookNo, book.StartChequeNo, book.EndChequeNo,
		book.CurrentChequeNo, book.Status, book.IssuedDate, book.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cheque_books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) GetForUpdate(ctx context.Context, id int64) (ChequeBook, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM cheque_books WHERE id = $1 FOR UPDATE`, id)
	return scanBook(row)
}

func (r *pgTxRepository) Save(ctx context.Context, book ChequeBook) error {
	_, err := r.tx.Exec(ctx, `
UPDATE cheque_books
SET current_cheque_no = $1, status = $2, updated_at = now()
WHERE id = $3`,
		book.CurrentChequeNo, book.Status, book.ID)
	return err
}

// mapConstraintErr converts unique-violation errors into the shared conflict
// sentinel so handlers answer 409 instead of 500.
func mapConstraintErr(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
