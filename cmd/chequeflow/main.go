package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chequeflow/chequeflow/internal/app"
	"github.com/chequeflow/chequeflow/internal/audit"
	"github.com/chequeflow/chequeflow/internal/cheque"
	"github.com/chequeflow/chequeflow/internal/chequebook"
	"github.com/chequeflow/chequeflow/internal/masterdata/accounts"
	"github.com/chequeflow/chequeflow/internal/masterdata/banks"
	"github.com/chequeflow/chequeflow/internal/masterdata/vendors"
	"github.com/chequeflow/chequeflow/internal/platform/cache"
	"github.com/chequeflow/chequeflow/internal/platform/db"
	"github.com/chequeflow/chequeflow/internal/report"
	"github.com/chequeflow/chequeflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	vendorService := vendors.NewService(vendors.NewRepository(pool))
	bankService := banks.NewService(banks.NewRepository(pool))
	accountService := accounts.NewService(accounts.NewRepository(pool), app.Banks(bankService))

	bookService := chequebook.NewService(chequebook.NewRepository(pool), app.Accounts(accountService))
	chequeService := cheque.NewService(cheque.NewRepository(pool), app.Vendors(vendorService), app.Accounts(accountService))
	auditService := audit.NewService(audit.NewRepository(pool))

	reportCache := report.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := report.NewService(report.NewRepository(pool), reportCache)
	chequeService.SetSummaryInvalidator(reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		VendorHandler:      vendors.NewHandler(logger, vendorService),
		BankHandler:        banks.NewHandler(logger, bankService),
		BankAccountHandler: accounts.NewHandler(logger, accountService),
		ChequeBookHandler:  chequebook.NewHandler(logger, bookService),
		ChequeHandler:      cheque.NewHandler(logger, chequeService),
		InvoiceHandler:     cheque.NewInvoicesHandler(logger, chequeService),
		AuditHandler:       audit.NewHandler(logger, auditService),
		ReportHandler:      report.NewHandler(logger, reportService),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
