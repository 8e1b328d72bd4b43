package cheque

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chequeflow/chequeflow/internal/platform/httpx"
)

// InvoicesHandler exposes the read-only standalone invoice surface. Invoice
// writes stay on the cheque update path.
type InvoicesHandler struct {
	logger  *slog.Logger
	service *Service
}

func NewInvoicesHandler(logger *slog.Logger, service *Service) *InvoicesHandler {
	return &InvoicesHandler{logger: logger, service: service}
}

// MountRoutes registers invoice endpoints.
func (h *InvoicesHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

func (h *InvoicesHandler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.Invoices(r.Context())
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *InvoicesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	invoice, err := h.service.Invoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}
