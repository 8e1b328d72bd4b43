package accounts

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive Status = "Active"
	StatusClosed Status = "Closed"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusClosed
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown account status %q", raw)
	}
	return s, nil
}

// BankAccount is the account cheques are drawn on. Cheque books and cheques
// reference it and block its deletion.
type BankAccount struct {
	ID          int64     `json:"id"`
	BankID      int64     `json:"bank_id"`
	AccountNo   string    `json:"account_no"`
	AccountName string    `json:"account_name"`
	AccountType string    `json:"account_type"`
	Balance     float64   `json:"balance"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BankAccountWithBank adds the bank name for display.
type BankAccountWithBank struct {
	BankAccount
	BankName string `json:"bank_name"`
}
