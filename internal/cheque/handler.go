package cheque

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chequeflow/chequeflow/internal/platform/httpx"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cheque endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/status/bulk", h.updateStatusBulk)
	r.Get("/{uid}", h.get)
	r.Put("/{uid}", h.update)
	r.Patch("/{uid}/status", h.updateStatus)
	r.Patch("/{uid}/verify", h.markVerified)
	// deletion addresses the storage id, not the business uid
	r.Delete("/{uid}", h.delete)
}

type invoiceLineRequest struct {
	ID            int64   `json:"id"`
	InvoiceNo     *string `json:"invoice_no"`
	InvoiceAmount float64 `json:"invoice_amount" validate:"gte=0"`
}

type createChequeRequest struct {
	VendorID      int64                `json:"vendor_id" validate:"required,gt=0"`
	ChequeBookID  int64                `json:"cheque_book_id" validate:"required,gt=0"`
	BankAccountID int64                `json:"bank_account_id" validate:"required,gt=0"`
	InvoiceNo     *string              `json:"invoice_no"`
	InvoiceDate   *string              `json:"invoice_date"`
	InvoiceAmount *float64             `json:"invoice_amount"`
	ReceiptNo     *string              `json:"receipt_no"`
	ChequeNo      string               `json:"cheque_no" validate:"required"`
	ChequeDate    string               `json:"cheque_date" validate:"required"`
	ChequeAmount  float64              `json:"cheque_amount" validate:"gt=0"`
	PayeeName     *string              `json:"payee_name"`
	InvoiceLines  []invoiceLineRequest `json:"invoice_lines" validate:"dive"`
}

type updateChequeRequest struct {
	ChequeBookID  int64                `json:"cheque_book_id" validate:"required,gt=0"`
	BankAccountID int64                `json:"bank_account_id" validate:"required,gt=0"`
	InvoiceNo     *string              `json:"invoice_no"`
	InvoiceDate   *string              `json:"invoice_date"`
	InvoiceAmount *float64             `json:"invoice_amount"`
	ReceiptNo     *string              `json:"receipt_no"`
	ChequeNo      string               `json:"cheque_no" validate:"required"`
	ChequeDate    string               `json:"cheque_date" validate:"required"`
	DueDate       *string              `json:"due_date"`
	ChequeAmount  float64              `json:"cheque_amount" validate:"gt=0"`
	PayeeName     *string              `json:"payee_name"`
	InvoiceLines  []invoiceLineRequest `json:"invoice_lines" validate:"dive"`
}

type updateStatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
	User      string `json:"user"`
}

type bulkUpdateStatusRequest struct {
	ChequeIDs []string `json:"cheque_ids"`
	NewStatus string   `json:"new_status" validate:"required"`
	User      string   `json:"user"`
}

type chequeDetailResponse struct {
	ChequeWithDetails
	InvoiceLines []InvoiceLine `json:"invoice_lines"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cheques, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("list cheques", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cheques)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	cheque, err := h.service.Get(r.Context(), uid)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lines, err := h.service.InvoiceLines(r.Context(), cheque.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, chequeDetailResponse{ChequeWithDetails: cheque, InvoiceLines: lines})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createChequeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	chequeDate, err := parseDate(req.ChequeDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque_date")
		return
	}
	invoiceDate, err := parseOptionalDate(req.InvoiceDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice_date")
		return
	}

	cheque, err := h.service.Create(r.Context(), CreateChequeInput{
		VendorID:      req.VendorID,
		ChequeBookID:  req.ChequeBookID,
		BankAccountID: req.BankAccountID,
		InvoiceNo:     req.InvoiceNo,
		InvoiceDate:   invoiceDate,
		InvoiceAmount: req.InvoiceAmount,
		ReceiptNo:     req.ReceiptNo,
		ChequeNo:      req.ChequeNo,
		ChequeDate:    chequeDate,
		ChequeAmount:  req.ChequeAmount,
		PayeeName:     req.PayeeName,
		InvoiceLines:  toLineInputs(req.InvoiceLines),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cheque)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	var req updateChequeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	chequeDate, err := parseDate(req.ChequeDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque_date")
		return
	}
	invoiceDate, err := parseOptionalDate(req.InvoiceDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice_date")
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid due_date")
		return
	}

	cheque, err := h.service.Update(r.Context(), uid, UpdateChequeInput{
		ChequeBookID:  req.ChequeBookID,
		BankAccountID: req.BankAccountID,
		InvoiceNo:     req.InvoiceNo,
		InvoiceDate:   invoiceDate,
		InvoiceAmount: req.InvoiceAmount,
		ReceiptNo:     req.ReceiptNo,
		ChequeNo:      req.ChequeNo,
		ChequeDate:    chequeDate,
		DueDate:       dueDate,
		ChequeAmount:  req.ChequeAmount,
		PayeeName:     req.PayeeName,
		InvoiceLines:  toLineInputs(req.InvoiceLines),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cheque)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	status, err := ParseStatus(req.NewStatus)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := req.User
	if actor == "" {
		actor = shared.ActorFromContext(r.Context())
	}
	if err := h.service.UpdateStatus(r.Context(), uid, status, actor); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Status updated successfully"})
}

func (h *Handler) updateStatusBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	status, err := ParseStatus(req.NewStatus)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := req.User
	if actor == "" {
		actor = shared.ActorFromContext(r.Context())
	}
	if err := h.service.UpdateStatusBulk(r.Context(), req.ChequeIDs, status, actor); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Statuses updated successfully",
		"count":   len(req.ChequeIDs),
	})
}

func (h *Handler) markVerified(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := h.service.MarkVerified(r.Context(), uid); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cheque marked as verified"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "uid"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cheque deleted successfully"})
}

func toLineInputs(lines []invoiceLineRequest) []InvoiceLineInput {
	out := make([]InvoiceLineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, InvoiceLineInput{ID: l.ID, InvoiceNo: l.InvoiceNo, InvoiceAmount: l.InvoiceAmount})
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
