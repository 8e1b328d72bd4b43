package app

import (
	"context"
	"errors"

	"github.com/chequeflow/chequeflow/internal/cheque"
	"github.com/chequeflow/chequeflow/internal/chequebook"
	"github.com/chequeflow/chequeflow/internal/masterdata/accounts"
	"github.com/chequeflow/chequeflow/internal/masterdata/banks"
	"github.com/chequeflow/chequeflow/internal/masterdata/vendors"
	"github.com/chequeflow/chequeflow/internal/shared"
)

// The lifecycle packages declare narrow lookup interfaces instead of
// importing masterdata directly. These adapters close the gap.

// VendorDirectory adapts the vendor service to the cheque lookup interface.
type VendorDirectory struct {
	service *vendors.Service
}

// Vendors wraps a vendor service as a cheque.VendorLookup.
func Vendors(service *vendors.Service) VendorDirectory {
	return VendorDirectory{service: service}
}

func (d VendorDirectory) GetVendor(ctx context.Context, id int64) (cheque.VendorRef, error) {
	vendor, err := d.service.Get(ctx, id)
	if err != nil {
		return cheque.VendorRef{}, err
	}
	return cheque.VendorRef{
		ID:               vendor.ID,
		Name:             vendor.VendorName,
		CreditPeriodDays: vendor.CreditPeriodDays,
	}, nil
}

// AccountDirectory adapts the bank account service to both the cheque and
// cheque book lookup interfaces.
type AccountDirectory struct {
	service *accounts.Service
}

// Accounts wraps a bank account service as an account lookup.
func Accounts(service *accounts.Service) AccountDirectory {
	return AccountDirectory{service: service}
}

func (d AccountDirectory) GetAccount(ctx context.Context, id int64) (cheque.AccountRef, error) {
	account, err := d.service.Get(ctx, id)
	if err != nil {
		return cheque.AccountRef{}, err
	}
	return cheque.AccountRef{ID: account.ID, AccountNo: account.AccountNo}, nil
}

func (d AccountDirectory) AccountExists(ctx context.Context, id int64) (bool, error) {
	_, err := d.service.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// BankDirectory adapts the bank service to the account module's lookup.
type BankDirectory struct {
	service *banks.Service
}

// Banks wraps a bank service as an accounts.BankLookup.
func Banks(service *banks.Service) BankDirectory {
	return BankDirectory{service: service}
}

func (d BankDirectory) BankExists(ctx context.Context, id int64) (bool, error) {
	_, err := d.service.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return false, err
}

var (
	_ cheque.VendorLookup      = VendorDirectory{}
	_ cheque.AccountLookup     = AccountDirectory{}
	_ chequebook.AccountLookup = AccountDirectory{}
	_ accounts.BankLookup      = BankDirectory{}
)
