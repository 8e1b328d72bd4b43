package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chequeflow/chequeflow/internal/audit"
	"github.com/chequeflow/chequeflow/internal/cheque"
	"github.com/chequeflow/chequeflow/internal/chequebook"
	"github.com/chequeflow/chequeflow/internal/masterdata/accounts"
	"github.com/chequeflow/chequeflow/internal/masterdata/banks"
	"github.com/chequeflow/chequeflow/internal/masterdata/vendors"
	"github.com/chequeflow/chequeflow/internal/report"
	"github.com/chequeflow/chequeflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	VendorHandler      *vendors.Handler
	BankHandler        *banks.Handler
	BankAccountHandler *accounts.Handler
	ChequeBookHandler  *chequebook.Handler
	ChequeHandler      *cheque.Handler
	InvoiceHandler     *cheque.InvoicesHandler
	AuditHandler       *audit.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with ChequeFlow defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/vendors", params.VendorHandler.MountRoutes)
		api.Route("/banks", params.BankHandler.MountRoutes)
		api.Route("/bank-accounts", params.BankAccountHandler.MountRoutes)
		api.Route("/cheque-books", params.ChequeBookHandler.MountRoutes)
		api.Route("/cheques", params.ChequeHandler.MountRoutes)
		api.Route("/invoices", params.InvoiceHandler.MountRoutes)
		api.Route("/cheque-histories", params.AuditHandler.MountRoutes)
		api.Route("/reports", params.ReportHandler.MountRoutes)
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
