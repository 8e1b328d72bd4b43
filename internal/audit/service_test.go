package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	rows []TimelineRow
}

func (m *memoryRepo) filtered(filters TimelineFilters) []TimelineRow {
	var out []TimelineRow
	for _, row := range m.rows {
		if filters.ChequeUID != "" && row.ChequeUID != filters.ChequeUID {
			continue
		}
		if filters.Action != "" && row.Action != filters.Action {
			continue
		}
		if filters.Actor != "" && row.ChangedBy != filters.Actor {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (m *memoryRepo) TimelineWindow(_ context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	rows := m.filtered(filters)
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memoryRepo) TimelineAll(_ context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	return m.filtered(filters), nil
}

func seedRows(n int) []TimelineRow {
	rows := make([]TimelineRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, TimelineRow{
			ID:        int64(i + 1),
			ChequeID:  1,
			ChequeUID: "uid-1",
			ChequeNo:  "000100",
			Action:    "Status Changed",
			NewStatus: "Issued",
			ChangedBy: "alice",
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
	}
	return rows
}

func TestTimelinePaging(t *testing.T) {
	svc := NewService(&memoryRepo{rows: seedRows(25)})

	first, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, first.Rows, 20)
	require.True(t, first.Paging.HasNext)
	require.Equal(t, 2, first.Paging.NextPage)
	require.Zero(t, first.Paging.PrevPage)

	second, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, second.Rows, 5)
	require.False(t, second.Paging.HasNext)
	require.Equal(t, 1, second.Paging.PrevPage)
}

func TestTimelineClampsPageSize(t *testing.T) {
	svc := NewService(&memoryRepo{rows: seedRows(60)})

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	require.Len(t, result.Rows, 50)
	require.Equal(t, 50, result.Paging.PageSize)
	require.Equal(t, 1, result.Paging.Page)
}

func TestTimelineFiltersByActor(t *testing.T) {
	rows := seedRows(3)
	rows[1].ChangedBy = "bob"
	svc := NewService(&memoryRepo{rows: rows})

	result, err := svc.Timeline(context.Background(), TimelineFilters{Actor: "bob"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, "bob", result.Rows[0].ChangedBy)
}

func TestWriteCSV(t *testing.T) {
	old := "Pending"
	rows := []TimelineRow{
		{
			ID:        1,
			ChequeUID: "uid-1",
			ChequeNo:  "000100",
			Action:    "Status Changed",
			OldStatus: &old,
			NewStatus: "Issued",
			ChangedBy: "alice",
			Remarks:   "Status changed from Pending to Issued",
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}

	data, err := WriteCSV(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\r\n")
	require.Len(t, lines, 2)
	require.Equal(t, "id,cheque_uid,cheque_no,action,old_status,new_status,changed_by,remarks,created_at", lines[0])
	require.Contains(t, lines[1], "000100")
	require.Contains(t, lines[1], "2025-01-02 03:04:05")
}
