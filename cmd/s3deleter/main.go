// Command s3deleter is the storage-deletion intermediary. It holds the
// external bucket credentials and deletes one object per request on behalf
// of the photo API.
package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"

	"photoapi/internal/config"
	"photoapi/internal/deleter"
	"photoapi/internal/http/middleware"
	"photoapi/internal/logging"
	"photoapi/internal/storage"
)

func main() {
	cfg := config.LoadDeleter()
	logger := logging.New(os.Stdout, cfg.Log.Level, logging.Location(cfg.Log.Timezone))

	if cfg.S3.Bucket == "" {
		logger.Error("bucket_not_configured", "component", "bootstrap", "status", "error")
		os.Exit(1)
	}

	// The external bucket is provisioned elsewhere; never create it from here.
	cfg.S3.EnsureBucket = false
	store, err := storage.NewMinIO(cfg.S3)
	if err != nil {
		logger.Error("object_storage_init_failed", "component", "bootstrap", "status", "error", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	deleter.RegisterRoutes(app, store, cfg.APIKey, logger)

	addr := ":" + cfg.Port
	logger.Info("server_starting", "component", "bootstrap", "addr", addr)
	if err := app.Listen(addr); err != nil {
		logger.Error("server_failed", "component", "bootstrap", "status", "error", "error", err)
		os.Exit(1)
	}
}
