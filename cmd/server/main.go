package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/config"
	"github.com/kayoni-co/stocklog/internal/repository/mongodb"
	sheetsrepo "github.com/kayoni-co/stocklog/internal/repository/sheets"
	"github.com/kayoni-co/stocklog/internal/scheduler"
	"github.com/kayoni-co/stocklog/internal/server/handlers"
	"github.com/kayoni-co/stocklog/internal/server/router"
	exportsvc "github.com/kayoni-co/stocklog/internal/service/exports"
	ledgersvc "github.com/kayoni-co/stocklog/internal/service/ledger"
	reportingsvc "github.com/kayoni-co/stocklog/internal/service/reporting"
	auditclient "github.com/kayoni-co/stocklog/pkg/clients/audit"
	"github.com/kayoni-co/stocklog/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("failed to resolve report timezone", zap.Error(err))
	}

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	ledgerSvc := ledgersvc.NewService(store.Items(), baseLogger.Named("svc.ledger"))
	reportingSvc := reportingsvc.NewService(ledgerSvc, loc, baseLogger.Named("svc.reporting"))

	var webhook auditclient.Client
	if cfg.Audit.WebhookURL != "" {
		webhook = auditclient.NewClient(cfg.Audit)
		baseLogger.Info("audit webhook enabled")
	} else {
		baseLogger.Warn("audit webhook url missing, export events will only be stored")
	}
	dispatcher := exportsvc.NewDispatcher(store.ExportLogs(), webhook, baseLogger.Named("svc.exports"))
	defer dispatcher.Drain()

	var archive sheetsrepo.Archive
	if cfg.Sheets.SpreadsheetID != "" {
		archive, err = sheetsrepo.NewGoogleSheetArchive(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets archive", zap.Error(err))
		}
	} else {
		baseLogger.Warn("report archive spreadsheet not configured, archiving disabled")
	}

	itemsHandler := handlers.NewItemsHandler(ledgerSvc, baseLogger.Named("handlers.items"))
	reportsHandler := handlers.NewReportsHandler(reportingSvc, dispatcher, loc, baseLogger.Named("handlers.reports"))
	engine := router.New(itemsHandler, reportsHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, dispatcher, archive, loc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
