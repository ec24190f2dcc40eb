package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"photoapi/internal/http/middleware"
	"photoapi/internal/service"
	"photoapi/internal/view"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service and view errors to responses. The record
// store message is the one internal detail passed through: the user has to
// know why nothing was deleted.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, view.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "VIEW_NOT_FOUND", "view not found")
	case errors.Is(err, view.ErrPhotoNotFound):
		return writeError(c, fiber.StatusNotFound, "PHOTO_NOT_FOUND", "photo not in collection")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "collection not found")
	case errors.Is(err, view.ErrNotReady):
		return writeError(c, fiber.StatusConflict, "NOT_READY", "collection is not loaded")
	case errors.Is(err, view.ErrBusy):
		return writeError(c, fiber.StatusConflict, "OPERATION_IN_PROGRESS", "another operation is running on this view")
	case errors.Is(err, service.ErrRecordStore):
		return writeError(c, fiber.StatusBadGateway, "RECORD_STORE_ERROR", err.Error())
	case errors.Is(err, service.ErrNothingToArchive):
		return writeError(c, fiber.StatusBadGateway, "DOWNLOAD_FAILED", "no photo could be downloaded")
	case errors.Is(err, context.Canceled):
		return writeError(c, fiber.StatusConflict, "OPERATION_CANCELLED", "operation cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "upstream timed out")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
