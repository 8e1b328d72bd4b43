package chequebook

import (
	"fmt"
	"time"
)

// Status enumerates cheque book states.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status. Parsing happens at the
// HTTP boundary; the service only ever sees valid values.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown cheque book status %q", raw)
	}
	return s, nil
}

// ChequeBook represents one physical book of pre-printed cheques. The cursor
// CurrentChequeNo is the next number to issue; EndChequeNo is the exclusive
// upper bound of the usable range.
type ChequeBook struct {
	ID              int64     `json:"id"`
	BankAccountID   int64     `json:"bank_account_id"`
	BookNo          string    `json:"book_no"`
	StartChequeNo   int       `json:"start_cheque_no"`
	EndChequeNo     int       `json:"end_cheque_no"`
	CurrentChequeNo int       `json:"current_cheque_no"`
	Status          Status    `json:"status"`
	IssuedDate      time.Time `json:"issued_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Exhausted reports whether the book has no numbers left to issue.
func (b ChequeBook) Exhausted() bool {
	return b.CurrentChequeNo >= b.EndChequeNo
}

// SetCursor moves the cursor and flips the book to Completed once the range
// is used up. It does not range-check; callers that need the invariant must
// validate first.
func (b *ChequeBook) SetCursor(n int) {
	b.CurrentChequeNo = n
	if b.CurrentChequeNo >= b.EndChequeNo {
		b.Status = StatusCompleted
	}
}

// FormatChequeNo renders a cheque number as the zero-padded 6-digit string
// printed on the physical cheque.
func FormatChequeNo(n int) string {
	return fmt.Sprintf("%06d", n)
}

// ChequeBookWithAccount includes the owning account number for display.
type ChequeBookWithAccount struct {
	ChequeBook
	AccountNo string `json:"account_no"`
}

// CreateChequeBookInput for registering a new book.
type CreateChequeBookInput struct {
	BankAccountID int64
	BookNo        string
	StartChequeNo int
	EndChequeNo   int
	IssuedDate    time.Time
}

// UpdateChequeBookInput overwrites an existing book.
type UpdateChequeBookInput struct {
	ID              int64
	BankAccountID   int64
	BookNo          string
	StartChequeNo   int
	EndChequeNo     int
	CurrentChequeNo int
	Status          Status
	IssuedDate      time.Time
}
