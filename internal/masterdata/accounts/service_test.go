package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chequeflow/chequeflow/internal/masterdata/mdshared"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type memoryRepo struct {
	accounts   map[int64]BankAccount
	dependents map[int64]int
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[int64]BankAccount), dependents: make(map[int64]int), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, _ mdshared.ListFilters) ([]BankAccountWithBank, int, error) {
	var out []BankAccountWithBank
	for _, a := range m.accounts {
		out = append(out, BankAccountWithBank{BankAccount: a})
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (BankAccount, error) {
	a, ok := m.accounts[id]
	if !ok {
		return BankAccount{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) GetWithBank(ctx context.Context, id int64) (BankAccountWithBank, error) {
	a, err := m.Get(ctx, id)
	if err != nil {
		return BankAccountWithBank{}, err
	}
	return BankAccountWithBank{BankAccount: a}, nil
}

func (m *memoryRepo) Create(_ context.Context, account BankAccount) (BankAccount, error) {
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryRepo) Update(_ context.Context, account BankAccount) error {
	if _, ok := m.accounts[account.ID]; !ok {
		return shared.ErrNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.accounts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *memoryRepo) CountDependents(_ context.Context, accountID int64) (int, error) {
	return m.dependents[accountID], nil
}

type stubBanks struct {
	ids map[int64]bool
}

func (s stubBanks) BankExists(_ context.Context, id int64) (bool, error) {
	return s.ids[id], nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, stubBanks{ids: map[int64]bool{1: true}}), repo
}

func TestCreateAccount(t *testing.T) {
	svc, _ := newTestService()

	account, err := svc.Create(context.Background(), BankAccount{BankID: 1, AccountNo: "001-223344", AccountName: "Operations"})
	require.NoError(t, err)
	require.Equal(t, StatusActive, account.Status)
}

func TestCreateAccountUnknownBank(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), BankAccount{BankID: 9, AccountNo: "001-223344", AccountName: "Operations"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteAccountWithDependents(t *testing.T) {
	svc, repo := newTestService()

	account, err := svc.Create(context.Background(), BankAccount{BankID: 1, AccountNo: "001-223344", AccountName: "Operations"})
	require.NoError(t, err)
	repo.dependents[account.ID] = 3

	err = svc.Delete(context.Background(), account.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteAccount(t *testing.T) {
	svc, _ := newTestService()

	account, err := svc.Create(context.Background(), BankAccount{BankID: 1, AccountNo: "001-223344", AccountName: "Operations"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), account.ID))
}
