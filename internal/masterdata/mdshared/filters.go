package mdshared

import (
	"net/http"
	"strconv"

	"github.com/chequeflow/chequeflow/internal/shared"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListFilters carries the standard list page filters for masterdata
// collections.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}

// FiltersFromRequest reads standard list filters from query parameters,
// applying defaults and clamping the limit.
func FiltersFromRequest(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Search: q.Get("search"),
	}
	if page := atoiDefault(q.Get("page"), DefaultPage); page > 0 {
		filters.Page = page
	}
	if limit := atoiDefault(q.Get("limit"), DefaultLimit); limit > 0 {
		filters.Limit = limit
	}
	if filters.Limit > MaxLimit {
		filters.Limit = MaxLimit
	}
	return filters
}

// Offset converts page/limit into a row offset.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}

func atoiDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// ListResult wraps a page of rows with pagination metadata.
type ListResult[T any] struct {
	Rows       []T               `json:"rows"`
	Pagination shared.Pagination `json:"pagination"`
}

// NewListResult assembles a result page from filters and the total count.
func NewListResult[T any](rows []T, filters ListFilters, total int) ListResult[T] {
	return ListResult[T]{
		Rows:       rows,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	}
}
