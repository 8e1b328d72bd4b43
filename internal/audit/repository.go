package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the cheque history ledger. The ledger itself is written
// only by the cheque lifecycle engine.
type Repository interface {
	TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error)
	TimelineAll(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const timelineSelect = `
SELECT h.id, h.cheque_id, c.cheque_uid, c.cheque_no, h.action, h.old_status,
       h.new_status, h.changed_by, h.remarks, h.created_at
FROM cheque_histories h
JOIN cheques c ON c.id = h.cheque_id`

func buildWhere(filters TimelineFilters) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filters.ChequeUID != "" {
		add("c.cheque_uid = $%d", filters.ChequeUID)
	}
	if filters.Action != "" {
		add("h.action = $%d", filters.Action)
	}
	if filters.Actor != "" {
		add("h.changed_by = $%d", filters.Actor)
	}
	if !filters.From.IsZero() {
		add("h.created_at >= $%d", filters.From)
	}
	if !filters.To.IsZero() {
		add("h.created_at <= $%d", filters.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func (r *pgRepository) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	where, args := buildWhere(filters)
	args = append(args, limit, offset)
	query := fmt.Sprintf("%s%s\nORDER BY h.created_at DESC, h.id DESC\nLIMIT $%d OFFSET $%d",
		timelineSelect, where, len(args)-1, len(args))
	return r.query(ctx, query, args)
}

func (r *pgRepository) TimelineAll(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	where, args := buildWhere(filters)
	query := timelineSelect + where + "\nORDER BY h.created_at DESC, h.id DESC"
	return r.query(ctx, query, args)
}

func (r *pgRepository) query(ctx context.Context, query string, args []any) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var t TimelineRow
		if err := rows.Scan(&t.ID, &t.ChequeID, &t.ChequeUID, &t.ChequeNo, &t.Action,
			&t.OldStatus, &t.NewStatus, &t.ChangedBy, &t.Remarks, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
