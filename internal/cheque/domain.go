package cheque

import (
	"fmt"
	"time"
)

// Status enumerates cheque states. There is no enforced ordering between
// states; any valid status can follow any other.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusIssued    Status = "Issued"
	StatusCleared   Status = "Cleared"
	StatusCancelled Status = "Cancelled"
	StatusReturned  Status = "Returned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusIssued, StatusCleared, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// ParseStatus validates a raw status string at the boundary.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown cheque status %q", raw)
	}
	return s, nil
}

// Cheque is the central entity. ChequeUID is the immutable business
// identifier generated at creation; ID is the storage key. The legacy
// single-invoice fields live alongside the invoice line collection and are
// settable independently.
type Cheque struct {
	ID            int64      `json:"id"`
	ChequeUID     string     `json:"cheque_uid"`
	VendorID      int64      `json:"vendor_id"`
	ChequeBookID  int64      `json:"cheque_book_id"`
	BankAccountID int64      `json:"bank_account_id"`
	InvoiceNo     *string    `json:"invoice_no"`
	InvoiceDate   *time.Time `json:"invoice_date"`
	InvoiceAmount *float64   `json:"invoice_amount"`
	ReceiptNo     *string    `json:"receipt_no"`
	ChequeNo      string     `json:"cheque_no"`
	ChequeDate    time.Time  `json:"cheque_date"`
	DueDate       *time.Time `json:"due_date"`
	ChequeAmount  float64    `json:"cheque_amount"`
	PayeeName     *string    `json:"payee_name"`
	Status        Status     `json:"status"`
	IsVerified    bool       `json:"is_verified"`
	IssueDate     *time.Time `json:"issue_date"`
	ClearedDate   *time.Time `json:"cleared_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Overdue is derived at read time and never stored.
func (c Cheque) Overdue(now time.Time) bool {
	return c.DueDate != nil && c.DueDate.Before(now) && c.Status != StatusCleared
}

// InvoiceLine is a cheque-scoped line item, reconciled as a set on each
// cheque update.
type InvoiceLine struct {
	ID            int64     `json:"id"`
	ChequeID      int64     `json:"cheque_id"`
	InvoiceNo     *string   `json:"invoice_no"`
	InvoiceAmount float64   `json:"invoice_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InvoiceLineWithCheque joins an invoice line with its owning cheque for
// the standalone invoice listing.
type InvoiceLineWithCheque struct {
	InvoiceLine
	ChequeUID string `json:"cheque_uid"`
	ChequeNo  string `json:"cheque_no"`
}

// HistoryEntry is one append-only audit row. OldStatus is nil for the
// creation row.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	ChequeID  int64     `json:"cheque_id"`
	Action    string    `json:"action"`
	OldStatus *string   `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Remarks   string    `json:"remarks"`
	CreatedAt time.Time `json:"created_at"`
}

// ChequeWithDetails joins display names for listing and reporting.
type ChequeWithDetails struct {
	Cheque
	VendorName string `json:"vendor_name"`
	AccountNo  string `json:"account_no"`
	IsOverdue  bool   `json:"is_overdue"`
}

// VendorRef is what the lifecycle engine needs to know about a vendor.
type VendorRef struct {
	ID               int64
	Name             string
	CreditPeriodDays *int
}

// AccountRef is what the lifecycle engine needs to know about a bank account.
type AccountRef struct {
	ID        int64
	AccountNo string
}

// InvoiceLineInput is one incoming invoice line. ID is zero for new lines;
// a positive ID or a matching invoice number binds it to an existing row.
type InvoiceLineInput struct {
	ID            int64
	InvoiceNo     *string
	InvoiceAmount float64
}

// CreateChequeInput carries everything needed to write a cheque.
type CreateChequeInput struct {
	VendorID      int64
	ChequeBookID  int64
	BankAccountID int64
	InvoiceNo     *string
	InvoiceDate   *time.Time
	InvoiceAmount *float64
	ReceiptNo     *string
	ChequeNo      string
	ChequeDate    time.Time
	ChequeAmount  float64
	PayeeName     *string
	InvoiceLines  []InvoiceLineInput
}

// UpdateChequeInput overwrites cheque fields and replaces the invoice set.
type UpdateChequeInput struct {
	ChequeBookID  int64
	BankAccountID int64
	InvoiceNo     *string
	InvoiceDate   *time.Time
	InvoiceAmount *float64
	ReceiptNo     *string
	ChequeNo      string
	ChequeDate    time.Time
	DueDate       *time.Time
	ChequeAmount  float64
	PayeeName     *string
	InvoiceLines  []InvoiceLineInput
}
