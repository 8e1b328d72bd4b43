package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chequeflow/chequeflow/internal/report"
)

// SummaryWarmupJob primes the cached status summary so the first dashboard
// request after an invalidation does not pay the aggregation cost.
type SummaryWarmupJob struct {
	Reports *report.Service
	Logger  *slog.Logger
}

// NewSummaryWarmupJob initialises the warmup handler.
func NewSummaryWarmupJob(reports *report.Service, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{Reports: reports, Logger: logger}
}

// Handle executes the warmup logic.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	rows, err := j.Reports.StatusSummary(ctx, report.SummaryFilter{BankAccountID: payload.BankAccountID})
	if err != nil {
		j.logger().Error("summary warmup failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("summary warmup complete",
		slog.Int64("bank_account_id", payload.BankAccountID),
		slog.Int("statuses", len(rows)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
