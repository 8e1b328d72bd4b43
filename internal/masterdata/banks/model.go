package banks

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown bank status %q", raw)
	}
	return s, nil
}

// Bank is a banking institution holding one or more accounts.
type Bank struct {
	ID        int64     `json:"id"`
	BankName  string    `json:"bank_name"`
	Branch    string    `json:"branch"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
