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

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/app"
	"github.com/belpol-ops/belpol-ops/internal/auth"
	"github.com/belpol-ops/belpol-ops/internal/companies"
	"github.com/belpol-ops/belpol-ops/internal/filters"
	"github.com/belpol-ops/belpol-ops/internal/observability"
	"github.com/belpol-ops/belpol-ops/internal/orders"
	"github.com/belpol-ops/belpol-ops/internal/platform/cache"
	"github.com/belpol-ops/belpol-ops/internal/platform/db"
	"github.com/belpol-ops/belpol-ops/internal/reports"
	"github.com/belpol-ops/belpol-ops/internal/schedule"
	"github.com/belpol-ops/belpol-ops/internal/shared"
	"github.com/belpol-ops/belpol-ops/internal/stores"
	"github.com/belpol-ops/belpol-ops/internal/users"
	"github.com/belpol-ops/belpol-ops/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "belpol_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, userService, sessionManager)

	accessMiddleware := access.Middleware{Users: userService, Logger: logger}

	filterRepo := filters.NewRepository(dbpool)
	filterStorage := filters.NewRedisStorage(redisClient, cfg.FilterBlobTTL)
	filterHandler := filters.NewHandler(logger, filterRepo, filterStorage)

	orderRepo := orders.NewRepository(dbpool)
	orderService := orders.NewService(orderRepo)
	orderHandler := orders.NewHandler(logger, orderService)

	storeRepo := stores.NewRepository(dbpool)
	storeHandler := stores.NewHandler(logger, storeRepo)

	companyRepo := companies.NewRepository(dbpool)
	companyHandler := companies.NewHandler(logger, companyRepo)

	scheduleService := schedule.NewService(orderService)
	scheduleHandler := schedule.NewHandler(logger, scheduleService)

	reportRepo := reports.NewRepository(dbpool)
	reportService := reports.NewService(logger, reportRepo, redisClient, cfg.ReportCacheTTL)
	reportHandler := reports.NewHandler(logger, reportService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AccessMiddleware: accessMiddleware,
		AuthHandler:      authHandler,
		FiltersHandler:   filterHandler,
		OrdersHandler:    orderHandler,
		UsersHandler:     userHandler,
		StoresHandler:    storeHandler,
		CompaniesHandler: companyHandler,
		ScheduleHandler:  scheduleHandler,
		ReportsHandler:   reportHandler,
		JobsHandler:      jobHandler,
		Metrics:          metrics,
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
