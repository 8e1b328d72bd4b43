package report

import "time"

// ChequeReportRow is a display projection of a cheque joined with vendor and
// account names. IsOverdue is computed at read time.
type ChequeReportRow struct {
	ChequeUID  string     `json:"cheque_uid"`
	Vendor     string     `json:"vendor"`
	InvoiceNo  string     `json:"invoice_no"`
	ChequeNo   string     `json:"cheque_no"`
	Amount     float64    `json:"amount"`
	DueDate    *time.Time `json:"due_date"`
	IsOverdue  bool       `json:"is_overdue"`
	AccountNo  string     `json:"account_no"`
	Status     string     `json:"status"`
	ClearedAt  *time.Time `json:"cleared_at,omitempty"`
}

// StatusSummaryRow aggregates cheques per status.
type StatusSummaryRow struct {
	Status      string  `json:"status"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// SummaryFilter bounds the status summary. A zero BankAccountID means all
// accounts; nil dates leave the range open.
type SummaryFilter struct {
	BankAccountID int64
	From          *time.Time
	To            *time.Time
}
