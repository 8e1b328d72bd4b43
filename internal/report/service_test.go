package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	rows          []ChequeReportRow
	summary       []StatusSummaryRow
	summaryCalls  int
	lastFilter    SummaryFilter
	dueFrom       time.Time
	dueTo         time.Time
	overdueCutoff time.Time
}

func (m *memoryRepo) DueBetween(_ context.Context, from, to time.Time) ([]ChequeReportRow, error) {
	m.dueFrom, m.dueTo = from, to
	return m.rows, nil
}

func (m *memoryRepo) OverdueBefore(_ context.Context, cutoff time.Time) ([]ChequeReportRow, error) {
	m.overdueCutoff = cutoff
	return m.rows, nil
}

func (m *memoryRepo) Cleared(_ context.Context) ([]ChequeReportRow, error) {
	return m.rows, nil
}

func (m *memoryRepo) StatusSummary(_ context.Context, filter SummaryFilter) ([]StatusSummaryRow, error) {
	m.summaryCalls++
	m.lastFilter = filter
	return m.summary, nil
}

func timePtr(t time.Time) *time.Time { return &t }

func TestDueThisMonthBounds(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC) }

	_, err := svc.DueThisMonth(context.Background())
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), repo.dueFrom)
	require.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), repo.dueTo)
}

func TestDueThisMonthMarksOverdue(t *testing.T) {
	now := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{rows: []ChequeReportRow{
		{ChequeNo: "000100", Status: "Pending", DueDate: timePtr(now.AddDate(0, 0, -2))},
		{ChequeNo: "000101", Status: "Pending", DueDate: timePtr(now.AddDate(0, 0, 2))},
	}}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return now }

	rows, err := svc.DueThisMonth(context.Background())
	require.NoError(t, err)
	require.True(t, rows[0].IsOverdue)
	require.False(t, rows[1].IsOverdue)
}

func TestOverdueChequesUsesNow(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.OverdueCheques(context.Background())
	require.NoError(t, err)
	require.Equal(t, now, repo.overdueCutoff)
}

func TestStatusSummaryPassThroughWithoutCache(t *testing.T) {
	repo := &memoryRepo{summary: []StatusSummaryRow{{Status: "Pending", Count: 2, TotalAmount: 300}}}
	svc := NewService(repo, nil)

	rows, err := svc.StatusSummary(context.Background(), SummaryFilter{BankAccountID: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), repo.lastFilter.BankAccountID)
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestStatusSummaryCaches(t *testing.T) {
	repo := &memoryRepo{summary: []StatusSummaryRow{{Status: "Issued", Count: 5, TotalAmount: 1200}}}
	cache, _ := newTestCache(t)
	svc := NewService(repo, cache)

	ctx := context.Background()
	filter := SummaryFilter{BankAccountID: 7}

	first, err := svc.StatusSummary(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.StatusSummary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.summaryCalls)
}

func TestInvalidateSummariesBustsCache(t *testing.T) {
	repo := &memoryRepo{summary: []StatusSummaryRow{{Status: "Issued", Count: 5, TotalAmount: 1200}}}
	cache, _ := newTestCache(t)
	svc := NewService(repo, cache)

	ctx := context.Background()
	filter := SummaryFilter{}

	_, err := svc.StatusSummary(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateSummaries(ctx))

	repo.summary = []StatusSummaryRow{{Status: "Issued", Count: 6, TotalAmount: 1500}}
	rows, err := svc.StatusSummary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, int64(6), rows[0].Count)
	require.Equal(t, 2, repo.summaryCalls)
}

func TestSummaryFiltersAreKeyedSeparately(t *testing.T) {
	repo := &memoryRepo{summary: []StatusSummaryRow{{Status: "Pending", Count: 1, TotalAmount: 10}}}
	cache, _ := newTestCache(t)
	svc := NewService(repo, cache)

	ctx := context.Background()
	_, err := svc.StatusSummary(ctx, SummaryFilter{BankAccountID: 1})
	require.NoError(t, err)
	_, err = svc.StatusSummary(ctx, SummaryFilter{BankAccountID: 2})
	require.NoError(t, err)

	require.Equal(t, 2, repo.summaryCalls)
}
