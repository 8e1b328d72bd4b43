package vendors

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

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Vendor, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Vendor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, vendor Vendor) (Vendor, error) {
	if vendor.Status == "" {
		vendor.Status = StatusActive
	}
	return s.repo.Create(ctx, vendor)
}

func (s *Service) Update(ctx context.Context, vendor Vendor) (Vendor, error) {
	existing, err := s.repo.Get(ctx, vendor.ID)
	if err != nil {
		return Vendor{}, err
	}
	vendor.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, vendor); err != nil {
		return Vendor{}, err
	}
	return vendor, nil
}

// Delete refuses to remove a vendor that still has cheques drawn against it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountCheques(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete vendor with associated cheques", shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}
