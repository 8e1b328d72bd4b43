package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service derives report views from already-materialized cheque state. It
// never mutates anything.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

func (s *Service) markOverdue(rows []ChequeReportRow) []ChequeReportRow {
	now := s.now()
	for i := range rows {
		rows[i].IsOverdue = rows[i].DueDate != nil &&
			rows[i].DueDate.Before(now) &&
			rows[i].Status != "Cleared"
	}
	return rows
}

// DueThisMonth lists cheques due within the current calendar month,
// excluding settled ones.
func (s *Service) DueThisMonth(ctx context.Context) ([]ChequeReportRow, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	rows, err := s.repo.DueBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return s.markOverdue(rows), nil
}

// OverdueCheques lists unsettled cheques past their due date.
func (s *Service) OverdueCheques(ctx context.Context) ([]ChequeReportRow, error) {
	rows, err := s.repo.OverdueBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.markOverdue(rows), nil
}

// ClearedCheques lists cleared cheques, most recently cleared first.
func (s *Service) ClearedCheques(ctx context.Context) ([]ChequeReportRow, error) {
	rows, err := s.repo.Cleared(ctx)
	if err != nil {
		return nil, err
	}
	return s.markOverdue(rows), nil
}

// StatusSummary groups cheques by status with count and summed amount. The
// result is cached under the report cache version, and concurrent identical
// requests collapse into one database query.
func (s *Service) StatusSummary(ctx context.Context, filter SummaryFilter) ([]StatusSummaryRow, error) {
	key, err := s.cache.BuildKey(ctx, "report", "status-summary", summaryKeyPart(filter))
	if err != nil {
		return nil, err
	}

	ch := s.group.DoChan(key, func() (any, error) {
		var rows []StatusSummaryRow
		err := s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
			return s.repo.StatusSummary(ctx, filter)
		})
		return rows, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]StatusSummaryRow), nil
	}
}

// InvalidateSummaries drops every cached summary. Called after cheque
// mutations.
func (s *Service) InvalidateSummaries(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func summaryKeyPart(filter SummaryFilter) string {
	from, to := "-", "-"
	if filter.From != nil {
		from = filter.From.UTC().Format("20060102")
	}
	if filter.To != nil {
		to = filter.To.UTC().Format("20060102")
	}
	return fmt.Sprintf("%s:%s:%s", strconv.FormatInt(filter.BankAccountID, 10), from, to)
}
