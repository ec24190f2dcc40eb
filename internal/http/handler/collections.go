package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photoapi/internal/service"
	"photoapi/internal/storage"
)

// ListCollections lists collections with limit & offset.
//
// @Summary List collections
// @Tags collections
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.CollectionListResult
// @Failure 400 {object} errorPayload
// @Router /collections [get]
func ListCollections(svc service.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListCollections(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetCollection returns one collection with its photos.
//
// @Summary Get collection
// @Tags collections
// @Produce json
// @Param id path string true "collection id"
// @Success 200 {object} model.Collection
// @Failure 404 {object} errorPayload
// @Router /collections/{id} [get]
func GetCollection(svc service.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		col, err := svc.GetCollection(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(col)
	}
}

// UploadPhoto adds a photo to a collection (multipart/form-data, field name: file).
//
// @Summary Upload photo
// @Tags collections
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "collection id"
// @Param file formData file true "image"
// @Success 201 {object} model.Photo
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /collections/{id}/photos [post]
func UploadPhoto(svc service.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		photo, err := svc.Upload(c.UserContext(), id, f, fh.Filename, ct, fh.Size)
		if err != nil {
			if errors.Is(err, storage.ErrObjectExists) {
				return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "a photo with this name already exists")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(photo)
	}
}
