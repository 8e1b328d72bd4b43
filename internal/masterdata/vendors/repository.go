package vendors

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Vendor, int, error)
	Get(ctx context.Context, id int64) (Vendor, error)
	Create(ctx context.Context, vendor Vendor) (Vendor, error)
	Update(ctx context.Context, vendor Vendor) error
	Delete(ctx context.Context, id int64) error
	CountCheques(ctx context.Context, vendorID int64) (int, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const vendorColumns = `id, vendor_code, vendor_name, address, phone, email, contact_person, credit_period_days, status, notes, created_at, updated_at`

func scanVendor(row pgx.Row) (Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.VendorCode, &v.VendorName, &v.Address, &v.Phone, &v.Email,
		&v.ContactPerson, &v.CreditPeriodDays, &v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, shared.ErrNotFound
	}
	return v, err
}

func (r *pgRepository) List(ctx context.Context, filters mdshared.ListFilters) ([]Vendor, int, error) {
	where := ``
	var args []any
	if filters.Search != "" {
		where = ` WHERE (vendor_name ILIKE $1 OR vendor_code ILIKE $1)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + vendorColumns + ` FROM vendors` + where + ` ORDER BY vendor_name`
	args = append(args, filters.Limit, filters.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, 0, err
		}
		vendors = append(vendors, v)
	}
	return vendors, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Vendor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	return scanVendor(row)
}

func (r *pgRepository) Create(ctx context.Context, vendor Vendor) (Vendor, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO vendors (vendor_code, vendor_name, address, phone, email, contact_person, credit_period_days, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
RETURNING id, created_at, updated_at`,
		vendor.VendorCode, vendor.VendorName, vendor.Address, vendor.Phone, vendor.Email,
		vendor.ContactPerson, vendor.CreditPeriodDays, vendor.Status, vendor.Notes).
		Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		return Vendor{}, mapConstraintErr(err)
	}
	return vendor, nil
}

func (r *pgRepository) Update(ctx context.Context, vendor Vendor) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE vendors
SET vendor_code = $1, vendor_name = $2, address = $3, phone = $4, email = $5,
    contact_person = $6, credit_period_days = $7, status = $8, notes = $9, updated_at = now()
WHERE id = $10`,
		vendor.VendorCode, vendor.VendorName, vendor.Address, vendor.Phone, vendor.Email,
		vendor.ContactPerson, vendor.CreditPeriodDays, vendor.Status, vendor.Notes, vendor.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) CountCheques(ctx context.Context, vendorID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cheques WHERE vendor_id = $1`, vendorID).Scan(&count)
	return count, err
}

func mapConstraintErr(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
