package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OverdueScanJob walks open cheques whose due date has passed and logs a
// per-vendor digest so operations can chase payments.
type OverdueScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type overdueScope struct {
	VendorID   int64
	VendorName string
	Count      int
	Total      float64
	Oldest     time.Time
}

// Handle executes the overdue scan logic.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.GraceDays < 0 {
		payload.GraceDays = 0
	}

	start := j.now()
	cutoff := start.AddDate(0, 0, -payload.GraceDays)

	logger := j.logger().With(slog.Int("grace_days", payload.GraceDays))
	logger.Info("starting overdue scan")

	scopes, err := j.scan(ctx, cutoff)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	total := 0
	for _, s := range scopes {
		total += s.Count
		logger.Warn("overdue cheques detected",
			slog.Int64("vendor_id", s.VendorID),
			slog.String("vendor", s.VendorName),
			slog.Int("count", s.Count),
			slog.Float64("total_amount", s.Total),
			slog.Time("oldest_due", s.Oldest),
		)
	}

	logger.Info("completed overdue scan",
		slog.Int("vendors", len(scopes)),
		slog.Int("cheques", total),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverdueScanJob) scan(ctx context.Context, cutoff time.Time) ([]overdueScope, error) {
	if j.Pool == nil {
		return nil, errors.New("overdue scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
SELECT c.vendor_id, v.vendor_name, COUNT(*), SUM(c.cheque_amount), MIN(c.due_date)
FROM cheques c
JOIN vendors v ON v.id = c.vendor_id
WHERE c.due_date IS NOT NULL
  AND c.due_date < $1
  AND c.status NOT IN ('Cleared', 'Cancelled')
GROUP BY c.vendor_id, v.vendor_name
ORDER BY MIN(c.due_date)`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scopes []overdueScope
	for rows.Next() {
		var s overdueScope
		if err := rows.Scan(&s.VendorID, &s.VendorName, &s.Count, &s.Total, &s.Oldest); err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
