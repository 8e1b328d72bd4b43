package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskChequeOverdueScan flags cheques past their due date.
	TaskChequeOverdueScan = "cheque:overdue_scan"
	// TaskReportSummaryWarmup primes the cached status summary.
	TaskReportSummaryWarmup = "report:summary_warmup"
)

// OverdueScanPayload configures an overdue scan run.
type OverdueScanPayload struct {
	// GraceDays pushes the cutoff back so freshly due cheques are not
	// reported on the same day.
	GraceDays int `json:"grace_days"`
}

// NewOverdueScanTask constructs an Asynq task for the overdue scan.
func NewOverdueScanTask(graceDays int) (*asynq.Task, error) {
	data, err := json.Marshal(OverdueScanPayload{GraceDays: graceDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskChequeOverdueScan, data), nil
}

// SummaryWarmupPayload configures a summary warmup run.
type SummaryWarmupPayload struct {
	BankAccountID int64 `json:"bank_account_id"`
}

// NewSummaryWarmupTask constructs an Asynq task for the report warmup.
func NewSummaryWarmupTask(bankAccountID int64) (*asynq.Task, error) {
	data, err := json.Marshal(SummaryWarmupPayload{BankAccountID: bankAccountID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportSummaryWarmup, data), nil
}
