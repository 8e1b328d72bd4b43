package report

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads cheque projections. No mutation happens here.
type Repository interface {
	DueBetween(ctx context.Context, from, to time.Time) ([]ChequeReportRow, error)
	OverdueBefore(ctx context.Context, cutoff time.Time) ([]ChequeReportRow, error)
	Cleared(ctx context.Context) ([]ChequeReportRow, error)
	StatusSummary(ctx context.Context, filter SummaryFilter) ([]StatusSummaryRow, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const reportSelect = `
SELECT c.cheque_uid, v.vendor_name, COALESCE(c.invoice_no, 'N/A'), c.cheque_no,
       c.cheque_amount, c.due_date, ba.account_no, c.status, c.cleared_date
FROM cheques c
JOIN vendors v ON v.id = c.vendor_id
JOIN bank_accounts ba ON ba.id = c.bank_account_id`

func collectRows(rows pgx.Rows) ([]ChequeReportRow, error) {
	defer rows.Close()
	var out []ChequeReportRow
	for rows.Next() {
		var r ChequeReportRow
		if err := rows.Scan(&r.ChequeUID, &r.Vendor, &r.InvoiceNo, &r.ChequeNo,
			&r.Amount, &r.DueDate, &r.AccountNo, &r.Status, &r.ClearedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *pgRepository) DueBetween(ctx context.Context, from, to time.Time) ([]ChequeReportRow, error) {
	rows, err := r.pool.Query(ctx, reportSelect+`
WHERE c.due_date IS NOT NULL
  AND c.due_date >= $1 AND c.due_date <= $2
  AND c.status NOT IN ('Cleared', 'Cancelled')
ORDER BY c.due_date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (r *pgRepository) OverdueBefore(ctx context.Context, cutoff time.Time) ([]ChequeReportRow, error) {
	rows, err := r.pool.Query(ctx, reportSelect+`
WHERE c.due_date IS NOT NULL
  AND c.due_date < $1
  AND c.status NOT IN ('Cleared', 'Cancelled')
ORDER BY c.due_date ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (r *pgRepository) Cleared(ctx context.Context) ([]ChequeReportRow, error) {
	rows, err := r.pool.Query(ctx, reportSelect+`
WHERE c.status = 'Cleared'
ORDER BY c.cleared_date DESC`)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (r *pgRepository) StatusSummary(ctx context.Context, filter SummaryFilter) ([]StatusSummaryRow, error) {
	rows, err := r.pool.Query(ctx, `
SELECT c.status, COUNT(*), COALESCE(SUM(c.cheque_amount), 0)
FROM cheques c
WHERE ($1 = 0 OR c.bank_account_id = $1)
  AND ($2::timestamptz IS NULL OR c.cheque_date >= $2)
  AND ($3::timestamptz IS NULL OR c.cheque_date <= $3)
GROUP BY c.status
ORDER BY c.status`, filter.BankAccountID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusSummaryRow
	for rows.Next() {
		var s StatusSummaryRow
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
