package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/nhc-it/assetlend-backend/api"
	"github.com/nhc-it/assetlend-backend/api/routes"
	"github.com/nhc-it/assetlend-backend/internal/assets"
	"github.com/nhc-it/assetlend-backend/internal/maintenance"
	"github.com/nhc-it/assetlend-backend/internal/requests"
	"github.com/nhc-it/assetlend-backend/internal/returns"
	"github.com/nhc-it/assetlend-backend/internal/workflow"
	"github.com/nhc-it/assetlend-backend/pkg/config"
	"github.com/nhc-it/assetlend-backend/pkg/db"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/metrics"
	"github.com/nhc-it/assetlend-backend/pkg/migrate"
	"github.com/nhc-it/assetlend-backend/pkg/outbox"
	"github.com/nhc-it/assetlend-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	sqlDB, err := dbClient.SQL()
	if err != nil {
		logg.Error(ctx, "failed to get sql handle", err)
		os.Exit(1)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, sqlDB); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, "assetlend"),
	)
	lifecycleMetrics := metrics.NewLifecycleMetrics(registry)

	conn := dbClient.DB()
	events := outbox.NewService(outbox.NewRepository(conn), logg)
	assetRepo := assets.NewRepository(conn)
	requestRepo := requests.NewRepository(conn)

	assetService, err := assets.NewService(assetRepo, dbClient, events, lifecycleMetrics, logg)
	requireService(ctx, logg, "assets", err)
	requestService, err := requests.NewService(requestRepo, dbClient, events, lifecycleMetrics, logg)
	requireService(ctx, logg, "requests", err)
	workflowService, err := workflow.NewService(workflow.ServiceParams{
		Requests: requestRepo,
		Assets:   assetRepo,
		Tx:       dbClient,
		Outbox:   events,
		Metrics:  lifecycleMetrics,
		Logger:   logg,
	})
	requireService(ctx, logg, "workflow", err)
	returnService, err := returns.NewService(returns.ServiceParams{
		Returns:  returns.NewRepository(conn),
		Requests: requestRepo,
		Assets:   assetRepo,
		Tx:       dbClient,
		Outbox:   events,
		Metrics:  lifecycleMetrics,
		Logger:   logg,
	})
	requireService(ctx, logg, "returns", err)
	maintenanceService, err := maintenance.NewService(maintenance.ServiceParams{
		Records: maintenance.NewRepository(conn),
		Assets:  assetRepo,
		Tx:      dbClient,
		Outbox:  events,
		Metrics: lifecycleMetrics,
		Logger:  logg,
	})
	requireService(ctx, logg, "maintenance", err)

	router := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		Metrics:     registry,
		Assets:      assetService,
		Requests:    requestService,
		Workflow:    workflowService,
		Returns:     returnService,
		Maintenance: maintenanceService,
		History:     events,
	})

	server := api.NewServer(cfg, os.Getenv("PORT"), router)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(serverCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if shutdownErr != nil {
		for _, err := range multierr.Errors(shutdownErr) {
			logg.Error(serverCtx, "shutdown error", err)
		}
		exitCode = 1
	}
	logg.Info(serverCtx, "api server stopped")
	os.Exit(exitCode)
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
