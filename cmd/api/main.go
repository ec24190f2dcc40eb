package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photoapi/docs"
	"photoapi/internal/config"
	"photoapi/internal/database"
	"photoapi/internal/database/migration"
	"photoapi/internal/deleter"
	"photoapi/internal/fetch"
	handlers "photoapi/internal/http/handler"
	"photoapi/internal/http/middleware"
	"photoapi/internal/logging"
	"photoapi/internal/otel"
	"photoapi/internal/repository/postgres"
	"photoapi/internal/service"
	"photoapi/internal/storage"
	"photoapi/internal/view"
)

// @title Photo Collection API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Log.Level, logging.Location(cfg.Log.Timezone))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "photoapi", logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err)
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(logger, "database_connect_failed", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		fatal(logger, "migration_failed", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		fatal(logger, "object_storage_init_failed", err)
	}

	// External photos can only be removed through the intermediary.
	var remover deleter.Remover
	if cfg.Intermediary.URL != "" {
		client, err := deleter.NewClient(cfg.Intermediary)
		if err != nil {
			fatal(logger, "intermediary_init_failed", err)
		}
		remover = client
	} else {
		logger.Warn("intermediary_not_configured", "component", "bootstrap")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bulkMetrics, err := service.NewMetrics(reg)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}

	collectionRepo := postgres.NewCollectionPostgres(db)
	photoSvc := service.NewPhotoService(objStore, collectionRepo)
	bulkSvc := service.NewBulkService(
		objStore,
		collectionRepo,
		remover,
		fetch.NewHTTPFetcher(config.Duration(cfg.Bulk.CallTimeoutSec), cfg.Bulk.FetchMaxBytes),
		service.BulkOptions{
			Bucket:            cfg.MinIO.Bucket,
			SignedURLTTL:      config.Duration(cfg.Bulk.SignedURLTTLSec),
			CallTimeout:       config.Duration(cfg.Bulk.CallTimeoutSec),
			FetchConcurrency:  cfg.Bulk.FetchConcurrency,
			RemoveConcurrency: cfg.Bulk.RemoveConcurrency,
		},
		logger,
		bulkMetrics,
	)

	views := view.NewStore(photoSvc.GetCollection, config.Duration(cfg.View.IdleTTLSec), logger)
	views.RunJanitor(ctx, config.Duration(cfg.View.SweepIntervalSec))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, photoSvc, bulkSvc, views)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutdown_started", "component", "bootstrap")
		views.CloseAll()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			logger.Error("http_shutdown_failed", "component", "bootstrap", "error", err)
		}
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing_shutdown_failed", "component", "bootstrap", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", "component", "bootstrap", "addr", addr)
	if err := app.Listen(addr); err != nil {
		fatal(logger, "server_failed", err)
	}
}

func fatal(logger *slog.Logger, event string, err error) {
	logger.Error(event, "component", "bootstrap", "status", "error", "error", err)
	os.Exit(1)
}
