package accounts

import (
	"context"
	"fmt"

	"github.com/chequeflow/chequeflow/internal/masterdata/mdshared"
	"github.com/chequeflow/chequeflow/internal/shared"
)

// BankLookup checks that the owning bank exists.
type BankLookup interface {
	BankExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo  Repository
	banks BankLookup
}

func NewService(repo Repository, banks BankLookup) *Service {
	return &Service{repo: repo, banks: banks}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]BankAccountWithBank, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (BankAccountWithBank, error) {
	return s.repo.GetWithBank(ctx, id)
}

func (s *Service) Create(ctx context.Context, account BankAccount) (BankAccount, error) {
	exists, err := s.banks.BankExists(ctx, account.BankID)
	if err != nil {
		return BankAccount{}, err
	}
	if !exists {
		return BankAccount{}, fmt.Errorf("%w: bank %d", shared.ErrNotFound, account.BankID)
	}
	if account.Status == "" {
		account.Status = StatusActive
	}
	return s.repo.Create(ctx, account)
}

func (s *Service) Update(ctx context.Context, account BankAccount) (BankAccount, error) {
	existing, err := s.repo.Get(ctx, account.ID)
	if err != nil {
		return BankAccount{}, err
	}
	if existing.BankID != account.BankID {
		exists, err := s.banks.BankExists(ctx, account.BankID)
		if err != nil {
			return BankAccount{}, err
		}
		if !exists {
			return BankAccount{}, fmt.Errorf("%w: bank %d", shared.ErrNotFound, account.BankID)
		}
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return BankAccount{}, err
	}
	return account, nil
}

// Delete refuses to remove an account still referenced by cheques or cheque
// books.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete bank account with associated cheques or cheque books", shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}
