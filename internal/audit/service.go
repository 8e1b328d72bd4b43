package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Service coordinates read access to the cheque history ledger.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of history rows. One extra row is fetched to
// detect whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.TimelineWindow(ctx, filters, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}

	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns the full filtered timeline without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	return s.repo.TimelineAll(ctx, filters)
}

// WriteCSV renders timeline rows as a CSV document.
func WriteCSV(rows []TimelineRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	header := []string{"id", "cheque_uid", "cheque_no", "action", "old_status", "new_status", "changed_by", "remarks", "created_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		oldStatus := ""
		if row.OldStatus != nil {
			oldStatus = *row.OldStatus
		}
		record := []string{
			fmt.Sprintf("%d", row.ID),
			row.ChequeUID,
			row.ChequeNo,
			row.Action,
			oldStatus,
			row.NewStatus,
			row.ChangedBy,
			row.Remarks,
			row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
