package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/writemytrip/ownerdesk/internal/app"
	"github.com/writemytrip/ownerdesk/internal/auth"
	"github.com/writemytrip/ownerdesk/internal/bookings"
	"github.com/writemytrip/ownerdesk/internal/finance"
	"github.com/writemytrip/ownerdesk/internal/guests"
	"github.com/writemytrip/ownerdesk/internal/observability"
	"github.com/writemytrip/ownerdesk/internal/owners"
	"github.com/writemytrip/ownerdesk/internal/platform/cache"
	"github.com/writemytrip/ownerdesk/internal/platform/db"
	"github.com/writemytrip/ownerdesk/internal/properties"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/export"
	reportinghttp "github.com/writemytrip/ownerdesk/internal/reporting/http"
	"github.com/writemytrip/ownerdesk/internal/shared"
	"github.com/writemytrip/ownerdesk/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, TimeZone: cfg.AppTimezone})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "ownerdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	idempotencyStore := shared.NewIdempotencyStore(redisClient, 24*time.Hour)

	reportStore := reporting.NewPGStore(dbpool)
	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	refresher := reporting.NewRefresher(reportCache, logger, reporting.NewMetrics(metrics.Registerer()))
	go func() {
		if err := refresher.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("report invalidation listener stopped", slog.Any("error", err))
		}
	}()
	reportService := reporting.NewService(reportStore, refresher, reporting.Config{
		Location:       cfg.Location(),
		CommissionRate: cfg.CommissionRate,
	})
	pdfExporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL, Client: &http.Client{Timeout: 30 * time.Second}}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	bookingService := bookings.NewService(bookings.NewRepository(dbpool), reportStore, refresher, cfg.Location(), logger)
	guestService := guests.NewService(guests.NewRepository(dbpool), reportStore, refresher, logger)
	financeService := finance.NewService(finance.NewRepository(dbpool), refresher, logger)
	propertyService := properties.NewService(reportStore, refresher, logger)
	accountService := owners.NewService(owners.NewRepository(dbpool), authService, refresher, logger)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	inspector := asynq.NewInspector(redisOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpt)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       authHandler,
		ReportHandler:     reportinghttp.NewHandler(logger, reportService, pdfExporter),
		BookingsHandler:   bookings.NewHandler(logger, bookingService, idempotencyStore),
		GuestsHandler:     guests.NewHandler(logger, guestService),
		FinanceHandler:    finance.NewHandler(logger, financeService),
		PropertiesHandler: properties.NewHandler(logger, propertyService),
		AccountHandler:    owners.NewHandler(logger, accountService),
		JobHandler:        jobs.NewHandler(inspector, jobClient, logger),
		Metrics:           metrics,
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
