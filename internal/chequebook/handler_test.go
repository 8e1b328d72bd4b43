package chequebook

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc, _ := newTestService()
	r := chi.NewRouter()
	NewHandler(slog.Default(), svc).MountRoutes(r)
	return r, svc
}

func TestNextNumberRequiresPost(t *testing.T) {
	router, svc := newTestRouter(t)
	book := seedBook(t, svc, 100, 150)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/%d/next-number", book.ID), nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNextNumberAdvancesCursor(t *testing.T) {
	router, svc := newTestRouter(t)
	book := seedBook(t, svc, 100, 150)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/%d/next-number", book.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cheque_no":"000100"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/%d/next-number", book.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cheque_no":"000101"}`, rec.Body.String())
}
