package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"photoapi/internal/service"
	"photoapi/internal/view"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, photoSvc service.PhotoService, bulkSvc service.BulkService, views *view.Store) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/collections", ListCollections(photoSvc))
	app.Get("/collections/:id", GetCollection(photoSvc))
	app.Post("/collections/:id/photos", UploadPhoto(photoSvc))
	app.Post("/collections/:id/views", OpenView(views))

	app.Get("/views/:id", GetView(views))
	app.Delete("/views/:id", CloseView(views))
	app.Post("/views/:id/selection/:photoId", ToggleSelection(views))
	app.Delete("/views/:id/selection", ClearSelection(views))
	app.Put("/views/:id/modal", OpenModal(views))
	app.Delete("/views/:id/modal", CloseModal(views))
	app.Post("/views/:id/download", DownloadSelected(views, bulkSvc))
	app.Post("/views/:id/delete", DeleteSelected(views, bulkSvc))
}
