package vendors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chequeflow/chequeflow/internal/masterdata/mdshared"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type memoryRepo struct {
	vendors     map[int64]Vendor
	chequeCount map[int64]int
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{vendors: make(map[int64]Vendor), chequeCount: make(map[int64]int), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, _ mdshared.ListFilters) ([]Vendor, int, error) {
	var out []Vendor
	for _, v := range m.vendors {
		out = append(out, v)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return Vendor{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *memoryRepo) Create(_ context.Context, vendor Vendor) (Vendor, error) {
	for _, v := range m.vendors {
		if v.VendorCode == vendor.VendorCode {
			return Vendor{}, shared.ErrConflict
		}
	}
	vendor.ID = m.nextID
	m.nextID++
	m.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (m *memoryRepo) Update(_ context.Context, vendor Vendor) error {
	if _, ok := m.vendors[vendor.ID]; !ok {
		return shared.ErrNotFound
	}
	m.vendors[vendor.ID] = vendor
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.vendors[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.vendors, id)
	return nil
}

func (m *memoryRepo) CountCheques(_ context.Context, vendorID int64) (int, error) {
	return m.chequeCount[vendorID], nil
}

func TestCreateVendorDefaultsActive(t *testing.T) {
	svc := NewService(newMemoryRepo())

	vendor, err := svc.Create(context.Background(), Vendor{VendorCode: "V-1", VendorName: "Colombo Motors"})
	require.NoError(t, err)
	require.Equal(t, StatusActive, vendor.Status)
}

func TestCreateVendorDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Vendor{VendorCode: "V-1", VendorName: "Colombo Motors"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Vendor{VendorCode: "V-1", VendorName: "Another"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteVendorWithCheques(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	vendor, err := svc.Create(context.Background(), Vendor{VendorCode: "V-1", VendorName: "Colombo Motors"})
	require.NoError(t, err)
	repo.chequeCount[vendor.ID] = 2

	err = svc.Delete(context.Background(), vendor.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteVendor(t *testing.T) {
	svc := NewService(newMemoryRepo())

	vendor, err := svc.Create(context.Background(), Vendor{VendorCode: "V-1", VendorName: "Colombo Motors"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), vendor.ID))

	_, err = svc.Get(context.Background(), vendor.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestParseVendorStatus(t *testing.T) {
	for _, raw := range []string{"Active", "Inactive", "Suspended", "Blacklisted"} {
		status, err := ParseStatus(raw)
		require.NoError(t, err)
		require.Equal(t, Status(raw), status)
	}
	_, err := ParseStatus("Frozen")
	require.Error(t, err)
}
