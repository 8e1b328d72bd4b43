package banks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chequeflow/chequeflow/internal/masterdata/mdshared"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type memoryRepo struct {
	banks    map[int64]Bank
	accounts map[int64]int
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{banks: make(map[int64]Bank), accounts: make(map[int64]int), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, _ mdshared.ListFilters) ([]Bank, int, error) {
	var out []Bank
	for _, b := range m.banks {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Bank, error) {
	b, ok := m.banks[id]
	if !ok {
		return Bank{}, shared.ErrNotFound
	}
	return b, nil
}

func (m *memoryRepo) Create(_ context.Context, bank Bank) (Bank, error) {
	bank.ID = m.nextID
	m.nextID++
	m.banks[bank.ID] = bank
	return bank, nil
}

func (m *memoryRepo) Update(_ context.Context, bank Bank) error {
	if _, ok := m.banks[bank.ID]; !ok {
		return shared.ErrNotFound
	}
	m.banks[bank.ID] = bank
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.banks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.banks, id)
	return nil
}

func (m *memoryRepo) CountAccounts(_ context.Context, bankID int64) (int, error) {
	return m.accounts[bankID], nil
}

func TestCreateBankDefaultsActive(t *testing.T) {
	svc := NewService(newMemoryRepo())

	bank, err := svc.Create(context.Background(), Bank{BankName: "Commercial Bank", Branch: "Fort"})
	require.NoError(t, err)
	require.Equal(t, StatusActive, bank.Status)
}

func TestDeleteBankWithAccounts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	bank, err := svc.Create(context.Background(), Bank{BankName: "Commercial Bank", Branch: "Fort"})
	require.NoError(t, err)
	repo.accounts[bank.ID] = 1

	err = svc.Delete(context.Background(), bank.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteBank(t *testing.T) {
	svc := NewService(newMemoryRepo())

	bank, err := svc.Create(context.Background(), Bank{BankName: "Commercial Bank", Branch: "Fort"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), bank.ID))
}
