package report

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chequeflow/chequeflow/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/due-this-month", h.dueThisMonth)
	r.Get("/overdue", h.overdue)
	r.Get("/cleared", h.cleared)
	r.Get("/status-summary", h.statusSummary)
}

func (h *Handler) dueThisMonth(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.DueThisMonth(r.Context())
	if err != nil {
		h.logger.Error("due this month report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.OverdueCheques(r.Context())
	if err != nil {
		h.logger.Error("overdue report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) cleared(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ClearedCheques(r.Context())
	if err != nil {
		h.logger.Error("cleared report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) statusSummary(w http.ResponseWriter, r *http.Request) {
	var filter SummaryFilter
	q := r.URL.Query()
	if raw := q.Get("bank_account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bank_account_id")
			return
		}
		filter.BankAccountID = id
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		end := t.AddDate(0, 0, 1).Add(-time.Second)
		filter.To = &end
	}

	rows, err := h.service.StatusSummary(r.Context(), filter)
	if err != nil {
		h.logger.Error("status summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
