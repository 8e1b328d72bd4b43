package vendors

import (
	"fmt"
	"time"
)

// Status enumerates vendor states.
type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusSuspended   Status = "Suspended"
	StatusBlacklisted Status = "Blacklisted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusBlacklisted:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown vendor status %q", raw)
	}
	return s, nil
}

// Vendor is a supplier that cheques are drawn in favour of.
// CreditPeriodDays feeds cheque due-date computation.
type Vendor struct {
	ID               int64     `json:"id"`
	VendorCode       string    `json:"vendor_code"`
	VendorName       string    `json:"vendor_name"`
	Address          string    `json:"address"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	ContactPerson    string    `json:"contact_person"`
	CreditPeriodDays *int      `json:"credit_period_days"`
	Status           Status    `json:"status"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
