package chequebook

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chequeflow/chequeflow/internal/platform/httpx"
)

// Handler exposes cheque book endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cheque book routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	// Issuing a number advances the book cursor, so this is a POST even
	// though it returns a value.
	r.Post("/{id}/next-number", h.nextNumber)
	r.Patch("/{id}/current-cheque", h.overrideCurrent)
}

type createChequeBookRequest struct {
	BankAccountID int64  `json:"bank_account_id" validate:"required,gt=0"`
	BookNo        string `json:"book_no" validate:"required"`
	StartChequeNo int    `json:"start_cheque_no" validate:"gte=0"`
	EndChequeNo   int    `json:"end_cheque_no" validate:"gt=0"`
	IssuedDate    string `json:"issued_date" validate:"required"`
}

type updateChequeBookRequest struct {
	BankAccountID   int64  `json:"bank_account_id" validate:"required,gt=0"`
	BookNo          string `json:"book_no" validate:"required"`
	StartChequeNo   int    `json:"start_cheque_no" validate:"gte=0"`
	EndChequeNo     int    `json:"end_cheque_no" validate:"gt=0"`
	CurrentChequeNo int    `json:"current_cheque_no" validate:"gte=0"`
	Status          string `json:"status" validate:"required"`
	IssuedDate      string `json:"issued_date" validate:"required"`
}

type overrideCursorRequest struct {
	CurrentChequeNo int `json:"current_cheque_no"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		books []ChequeBookWithAccount
		err   error
	)
	if raw := r.URL.Query().Get("bank_account_id"); raw != "" {
		accountID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bank_account_id")
			return
		}
		books, err = h.service.ListByAccount(r.Context(), accountID)
	} else {
		books, err = h.service.List(r.Context())
	}
	if err != nil {
		h.logger.Error("list cheque books", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque book id")
		return
	}
	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createChequeBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	issuedDate, err := parseDate(req.IssuedDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid issued_date")
		return
	}

	book, err := h.service.Create(r.Context(), CreateChequeBookInput{
		BankAccountID: req.BankAccountID,
		BookNo:        req.BookNo,
		StartChequeNo: req.StartChequeNo,
		EndChequeNo:   req.EndChequeNo,
		IssuedDate:    issuedDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque book id")
		return
	}
	var req updateChequeBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	issuedDate, err := parseDate(req.IssuedDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid issued_date")
		return
	}

	book, err := h.service.Update(r.Context(), UpdateChequeBookInput{
		ID:              id,
		BankAccountID:   req.BankAccountID,
		BookNo:          req.BookNo,
		StartChequeNo:   req.StartChequeNo,
		EndChequeNo:     req.EndChequeNo,
		CurrentChequeNo: req.CurrentChequeNo,
		Status:          status,
		IssuedDate:      issuedDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque book id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cheque book deleted successfully"})
}

func (h *Handler) nextNumber(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque book id")
		return
	}
	number, err := h.service.NextChequeNumber(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"cheque_no": number})
}

func (h *Handler) overrideCurrent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cheque book id")
		return
	}
	var req overrideCursorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	book, err := h.service.OverrideCurrentChequeNo(r.Context(), id, req.CurrentChequeNo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
