package deleter

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"photoapi/internal/storage"
)

// RegisterRoutes mounts the intermediary on app. Every POST / deletes the
// object named by {"key": ...} from store. Deleting a missing key succeeds,
// so repeated calls are safe.
func RegisterRoutes(app *fiber.App, store storage.Storage, apiKey string, logger *slog.Logger) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, content-type, apikey",
		AllowMethods: "POST, OPTIONS",
	}))

	app.Post("/", func(c *fiber.Ctx) error {
		if apiKey != "" && !authorized(c, apiKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(Response{Error: "unauthorized"})
		}

		var req Request
		if err := json.Unmarshal(c.Body(), &req); err != nil || req.Key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(Response{Error: "Missing file key"})
		}

		logger.Info("deleting external object", "component", "deleter", "key", req.Key)
		if err := store.Delete(c.UserContext(), req.Key); err != nil {
			logger.Error("external object deletion failed", "component", "deleter", "key", req.Key, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(Response{Error: err.Error()})
		}
		return c.JSON(Response{Success: true})
	})
}

func authorized(c *fiber.Ctx, apiKey string) bool {
	if c.Get("apikey") == apiKey {
		return true
	}
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	return ok && token == apiKey
}
