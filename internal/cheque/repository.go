package cheque

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chequeflow/chequeflow/internal/chequebook"
	"github.com/chequeflow/chequeflow/internal/platform/db"
	"github.com/chequeflow/chequeflow/internal/shared"
)

// Repository defines cheque data access. Mutations that span multiple rows
// run through WithTx so a partial failure rolls everything back.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetByUID(ctx context.Context, uid string) (Cheque, error)
	GetDetails(ctx context.Context, uid string) (ChequeWithDetails, error)
	List(ctx context.Context, search string) ([]ChequeWithDetails, error)
	ChequeNoExists(ctx context.Context, bankAccountID int64, chequeNo string, excludeID int64) (bool, error)
	ListInvoiceLines(ctx context.Context, chequeID int64) ([]InvoiceLine, error)
	ListInvoices(ctx context.Context) ([]InvoiceLineWithCheque, error)
	GetInvoice(ctx context.Context, id int64) (InvoiceLineWithCheque, error)
}

// TxRepository groups the writes of one lifecycle operation.
type TxRepository interface {
	GetByUID(ctx context.Context, uid string) (Cheque, error)
	Get(ctx context.Context, id int64) (Cheque, error)
	ListByUIDs(ctx context.Context, uids []string) ([]Cheque, error)
	Insert(ctx context.Context, c Cheque) (Cheque, error)
	Update(ctx context.Context, c Cheque) error
	Delete(ctx context.Context, id int64) error

	ListInvoiceLines(ctx context.Context, chequeID int64) ([]InvoiceLine, error)
	InsertInvoiceLine(ctx context.Context, line InvoiceLine) (InvoiceLine, error)
	UpdateInvoiceLine(ctx context.Context, line InvoiceLine) error
	DeleteInvoiceLine(ctx context.Context, id int64) error
	DeleteInvoiceLinesByCheque(ctx context.Context, chequeID int64) error

	AppendHistory(ctx context.Context, entry HistoryEntry) error
	DeleteHistoryByCheque(ctx context.Context, chequeID int64) error

	GetBookForUpdate(ctx context.Context, bookID int64) (chequebook.ChequeBook, error)
	SaveBook(ctx context.Context, book chequebook.ChequeBook) error
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
		return fn(ctx, &pgTxRepository{q: tx})
	})
}

const chequeColumns = `id, cheque_uid, vendor_id, cheque_book_id, bank_account_id,
invoice_no, invoice_date, invoice_amount, receipt_no, cheque_no, cheque_date,
due_date, cheque_amount, payee_name, status, is_verified, issue_date,
cleared_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheque(row rowScanner) (Cheque, error) {
	var c Cheque
	err := row.Scan(&c.ID, &c.ChequeUID, &c.VendorID, &c.ChequeBookID, &c.BankAccountID,
		&c.InvoiceNo, &c.InvoiceDate, &c.InvoiceAmount, &c.ReceiptNo, &c.ChequeNo, &c.ChequeDate,
		&c.DueDate, &c.ChequeAmount, &c.PayeeName, &c.Status, &c.IsVerified, &c.IssueDate,
		&c.ClearedDate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cheque{}, shared.ErrNotFound
	}
	return c, err
}

func (r *pgRepository) GetByUID(ctx context.Context, uid string) (Cheque, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE cheque_uid = $1`, uid)
	return scanCheque(row)
}

const detailColumns = `c.id, c.cheque_uid, c.vendor_id, c.cheque_book_id, c.bank_account_id,
c.invoice_no, c.invoice_date, c.invoice_amount, c.receipt_no, c.cheque_no, c.cheque_date,
c.due_date, c.cheque_amount, c.payee_name, c.status, c.is_verified, c.issue_date,
c.cleared_date, c.created_at, c.updated_at, v.vendor_name, ba.account_no`

func scanDetails(row rowScanner) (ChequeWithDetails, error) {
	var d ChequeWithDetails
	err := row.Scan(&d.ID, &d.ChequeUID, &d.VendorID, &d.ChequeBookID, &d.BankAccountID,
		&d.InvoiceNo, &d.InvoiceDate, &d.InvoiceAmount, &d.ReceiptNo, &d.ChequeNo, &d.ChequeDate,
		&d.DueDate, &d.ChequeAmount, &d.PayeeName, &d.Status, &d.IsVerified, &d.IssueDate,
		&d.ClearedDate, &d.CreatedAt, &d.UpdatedAt, &d.VendorName, &d.AccountNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChequeWithDetails{}, shared.ErrNotFound
	}
	return d, err
}

func (r *pgRepository) GetDetails(ctx context.Context, uid string) (ChequeWithDetails, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+detailColumns+`
FROM cheques c
JOIN vendors v ON v.id = c.vendor_id
JOIN bank_accounts ba ON ba.id = c.bank_account_id
WHERE c.cheque_uid = $1`, uid)
	return scanDetails(row)
}

func (r *pgRepository) List(ctx context.Context, search string) ([]ChequeWithDetails, error) {
	query := `
SELECT ` + detailColumns + `
FROM cheques c
JOIN vendors v ON v.id = c.vendor_id
JOIN bank_accounts ba ON ba.id = c.bank_account_id`
	var args []any
	if search != "" {
		query += `
WHERE c.cheque_no ILIKE '%' || $1 || '%'
   OR c.invoice_no ILIKE '%' || $1 || '%'
   OR v.vendor_name ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += `
ORDER BY c.cheque_date DESC, c.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cheques []ChequeWithDetails
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		cheques = append(cheques, d)
	}
	return cheques, rows.Err()
}

func (r *pgRepository) ChequeNoExists(ctx context.Context, bankAccountID int64, chequeNo string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cheques WHERE bank_account_id = $1 AND cheque_no = $2 AND id <> $3)`,
		bankAccountID, chequeNo, excludeID).Scan(&exists)
	return exists, err
}

func (r *pgRepository) ListInvoiceLines(ctx context.Context, chequeID int64) ([]InvoiceLine, error) {
	return listInvoiceLines(ctx, r.pool, chequeID)
}

const invoiceWithChequeSelect = `
SELECT i.id, i.cheque_id, i.invoice_no, i.invoice_amount, i.created_at, i.updated_at,
       c.cheque_uid, c.cheque_no
FROM invoices i
JOIN cheques c ON c.id = i.cheque_id`

func (r *pgRepository) ListInvoices(ctx context.Context) ([]InvoiceLineWithCheque, error) {
	rows, err := r.pool.Query(ctx, invoiceWithChequeSelect+`
ORDER BY i.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []InvoiceLineWithCheque
	for rows.Next() {
		var inv InvoiceLineWithCheque
		if err := rows.Scan(&inv.ID, &inv.ChequeID, &inv.InvoiceNo, &inv.InvoiceAmount,
			&inv.CreatedAt, &inv.UpdatedAt, &inv.ChequeUID, &inv.ChequeNo); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *pgRepository) GetInvoice(ctx context.Context, id int64) (InvoiceLineWithCheque, error) {
	var inv InvoiceLineWithCheque
	err := r.pool.QueryRow(ctx, invoiceWithChequeSelect+`
WHERE i.id = $1`, id).
		Scan(&inv.ID, &inv.ChequeID, &inv.InvoiceNo, &inv.InvoiceAmount,
			&inv.CreatedAt, &inv.UpdatedAt, &inv.ChequeUID, &inv.ChequeNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return InvoiceLineWithCheque{}, shared.ErrNotFound
	}
	return inv, err
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func listInvoiceLines(ctx context.Context, q queryer, chequeID int64) ([]InvoiceLine, error) {
	rows, err := q.Query(ctx, `
SELECT id, cheque_id, invoice_no, invoice_amount, created_at, updated_at
FROM invoices
WHERE cheque_id = $1
ORDER BY id`, chequeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ID, &l.ChequeID, &l.InvoiceNo, &l.InvoiceAmount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type pgTxRepository struct {
	q pgx.Tx
}

func (r *pgTxRepository) GetByUID(ctx context.Context, uid string) (Cheque, error) {
	row := r.q.QueryRow(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE cheque_uid = $1 FOR UPDATE`, uid)
	return scanCheque(row)
}

func (r *pgTxRepository) Get(ctx context.Context, id int64) (Cheque, error) {
	row := r.q.QueryRow(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE id = $1 FOR UPDATE`, id)
	return scanCheque(row)
}

func (r *pgTxRepository) ListByUIDs(ctx context.Context, uids []string) ([]Cheque, error) {
	rows, err := r.q.Query(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE cheque_uid = ANY($1) FOR UPDATE`, uids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cheques []Cheque
	for rows.Next() {
		c, err := scanCheque(rows)
		if err != nil {
			return nil, err
		}
		cheques = append(cheques, c)
	}
	return cheques, rows.Err()
}

func (r *pgTxRepository) Insert(ctx context.Context, c Cheque) (Cheque, error) {
	err := r.q.QueryRow(ctx, `
INSERT INTO cheques (cheque_uid, vendor_id, cheque_book_id, bank_account_id,
	invoice_no, invoice_date, invoice_amount, receipt_no, cheque_no, cheque_date,
	due_date, cheque_amount, payee_name, status, is_verified, issue_date, cleared_date,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
RETURNING id, created_at, updated_at`,
		c.ChequeUID, c.VendorID, c.ChequeBookID, c.BankAccountID,
		c.InvoiceNo, c.InvoiceDate, c.InvoiceAmount, c.ReceiptNo, c.ChequeNo, c.ChequeDate,
		c.DueDate, c.ChequeAmount, c.PayeeName, c.Status, c.IsVerified, c.IssueDate, c.ClearedDate).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Cheque{}, mapConstraintErr(err)
	}
	return c, nil
}

func (r *pgTxRepository) Update(ctx context.Context, c Cheque) error {
	tag, err := r.q.Exec(ctx, `
UPDATE cheques
SET vendor_id = $1, cheque_book_id = $2, bank_account_id = $3,
    invoice_no = $4, invoice_date = $5, invoice_amount = $6, receipt_no = $7,
    cheque_no = $8, cheque_date = $9, due_date = $10, cheque_amount = $11,
    payee_name = $12, status = $13, is_verified = $14, issue_date = $15,
    cleared_date = $16, updated_at = now()
WHERE id = $17`,
		c.VendorID, c.ChequeBookID, c.BankAccountID,
		c.InvoiceNo, c.InvoiceDate, c.InvoiceAmount, c.ReceiptNo,
		c.ChequeNo, c.ChequeDate, c.DueDate, c.ChequeAmount,
		c.PayeeName, c.Status, c.IsVerified, c.IssueDate,
		c.ClearedDate, c.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cheques WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) ListInvoiceLines(ctx context.Context, chequeID int64) ([]InvoiceLine, error) {
	return listInvoiceLines(ctx, r.q, chequeID)
}

func (r *pgTxRepository) InsertInvoiceLine(ctx context.Context, line InvoiceLine) (InvoiceLine, error) {
	err := r.q.QueryRow(ctx, `
INSERT INTO invoices (cheque_id, invoice_no, invoice_amount, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id, created_at, updated_at`,
		line.ChequeID, line.InvoiceNo, line.InvoiceAmount).
		Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return InvoiceLine{}, err
	}
	return line, nil
}

func (r *pgTxRepository) UpdateInvoiceLine(ctx context.Context, line InvoiceLine) error {
	_, err := r.q.Exec(ctx, `
UPDATE invoices SET invoice_no = $1, invoice_amount = $2, updated_at = now() WHERE id = $3`,
		line.InvoiceNo, line.InvoiceAmount, line.ID)
	return err
}

func (r *pgTxRepository) DeleteInvoiceLine(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	return err
}

func (r *pgTxRepository) DeleteInvoiceLinesByCheque(ctx context.Context, chequeID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE cheque_id = $1`, chequeID)
	return err
}

func (r *pgTxRepository) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := r.q.Exec(ctx, `
INSERT INTO cheque_histories (cheque_id, action, old_status, new_status, changed_by, remarks, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())`,
		entry.ChequeID, entry.Action, entry.OldStatus, entry.NewStatus, entry.ChangedBy, entry.Remarks)
	return err
}

func (r *pgTxRepository) DeleteHistoryByCheque(ctx context.Context, chequeID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM cheque_histories WHERE cheque_id = $1`, chequeID)
	return err
}

func (r *pgTxRepository) GetBookForUpdate(ctx context.Context, bookID int64) (chequebook.ChequeBook, error) {
	var b chequebook.ChequeBook
	err := r.q.QueryRow(ctx, `
SELECT id, bank_account_id, book_no, start_cheque_no, end_cheque_no, current_cheque_no, status, issued_date, created_at, updated_at
FROM cheque_books WHERE id = $1 FOR UPDATE`, bookID).
		Scan(&b.ID, &b.BankAccountID, &b.BookNo, &b.StartChequeNo, &b.EndChequeNo,
			&b.CurrentChequeNo, &b.Status, &b.IssuedDate, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chequebook.ChequeBook{}, shared.ErrNotFound
	}
	return b, err
}

func (r *pgTxRepository) SaveBook(ctx context.Context, book chequebook.ChequeBook) error {
	_, err := r.q.Exec(ctx, `
UPDATE cheque_books SET current_cheque_no = $1, status = $2, updated_at = now() WHERE id = $3`,
		book.CurrentChequeNo, book.Status, book.ID)
	return err
}

func mapConstraintErr(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
