package banks

import (
	"context"
	"fmt"

	"github.com/chequeflow/chequeflow/internal/masterdata/mdshared"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Bank, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Bank, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, bank Bank) (Bank, error) {
	if bank.Status == "" {
		bank.Status = StatusActive
	}
	return s.repo.Create(ctx, bank)
}

func (s *Service) Update(ctx context.Context, bank Bank) (Bank, error) {
	if _, err := s.repo.Get(ctx, bank.ID); err != nil {
		return Bank{}, err
	}
	if err := s.repo.Update(ctx, bank); err != nil {
		return Bank{}, err
	}
	return bank, nil
}

// Delete refuses to remove a bank that still has accounts.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountAccounts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete bank with associated accounts", shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}
