package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"photoapi/internal/model"
	"photoapi/internal/service"
	"photoapi/internal/view"
)

// FailedItemsHeader carries the number of photos left out of a download archive.
const FailedItemsHeader = "X-Failed-Items"

type openModalRequest struct {
	URL string `json:"url"`
}

type toggleResponse struct {
	PhotoID  string `json:"photo_id"`
	Selected bool   `json:"selected"`
	Count    int    `json:"selected_count"`
}

// OpenView starts a view session on a collection. The collection loads in the
// background; with ?wait=true the response is sent once loading finished,
// which the store bounds by its load timeout.
//
// @Summary Open collection view
// @Tags views
// @Produce json
// @Param id path string true "collection id"
// @Param wait query bool false "wait for the collection to load"
// @Success 201 {object} view.State
// @Router /collections/{id}/views [post]
func OpenView(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The view outlives the request; the param aliases fasthttp's buffer.
		id := utils.CopyString(c.Params("id"))
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		v := store.Open(id)
		if c.QueryBool("wait") {
			<-v.Ready()
		}
		c.Location("/views/" + v.ID())
		return c.Status(fiber.StatusCreated).JSON(v.State())
	}
}

// GetView returns the current view state.
//
// @Summary Get view state
// @Tags views
// @Produce json
// @Param id path string true "view id"
// @Success 200 {object} view.State
// @Failure 404 {object} errorPayload
// @Router /views/{id} [get]
func GetView(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(v.State())
	}
}

// CloseView tears the view down, cancelling any operation still running on it.
//
// @Summary Close view
// @Tags views
// @Param id path string true "view id"
// @Success 204
// @Router /views/{id} [delete]
func CloseView(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.Close(c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ToggleSelection flips the selection of one photo.
//
// @Summary Toggle photo selection
// @Tags views
// @Produce json
// @Param id path string true "view id"
// @Param photoId path string true "photo id"
// @Success 200 {object} toggleResponse
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /views/{id}/selection/{photoId} [post]
func ToggleSelection(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		photoID := c.Params("photoId")
		selected, err := v.Toggle(photoID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toggleResponse{
			PhotoID:  photoID,
			Selected: selected,
			Count:    len(v.State().SelectedPhotos),
		})
	}
}

// ClearSelection empties the selection.
//
// @Summary Clear selection
// @Tags views
// @Param id path string true "view id"
// @Success 204
// @Router /views/{id}/selection [delete]
func ClearSelection(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		v.ClearSelection()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// OpenModal shows one image full-size.
//
// @Summary Open modal
// @Tags views
// @Accept json
// @Param id path string true "view id"
// @Param body body openModalRequest true "image"
// @Success 204
// @Router /views/{id}/modal [put]
func OpenModal(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		var req openModalRequest
		if err := c.BodyParser(&req); err != nil || req.URL == "" {
			return writeError(c, fiber.StatusBadRequest, "URL_REQUIRED", "url is required")
		}
		v.OpenModal(req.URL)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CloseModal hides the modal.
//
// @Summary Close modal
// @Tags views
// @Param id path string true "view id"
// @Success 204
// @Router /views/{id}/modal [delete]
func CloseModal(store *view.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		v.CloseModal()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadSelected downloads the selection. One photo redirects to its URL;
// several are sent as a zip archive, with the number of photos that could not
// be fetched in X-Failed-Items.
//
// @Summary Download selected photos
// @Tags views
// @Produce application/zip
// @Param id path string true "view id"
// @Success 200 {file} binary
// @Success 302
// @Success 204
// @Failure 502 {object} errorPayload
// @Router /views/{id}/download [post]
func DownloadSelected(store *view.Store, bulk service.BulkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := v.DownloadSelected(c.UserContext(), bulk)
		if err != nil {
			return writeServiceError(c, err)
		}

		switch {
		case res.File != nil:
			c.Set("X-Filename", res.File.Filename)
			return c.Redirect(res.File.URL, fiber.StatusFound)
		case res.Archive != nil:
			c.Set(FailedItemsHeader, strconv.Itoa(len(model.Failures(res.Results))))
			c.Attachment(res.Archive.Name)
			c.Type("zip")
			return c.Send(res.Archive.Data)
		default:
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
}

// DeleteSelected permanently deletes the selection. The caller confirms with
// ?confirm=true; without it the request is a declined delete and nothing happens.
//
// @Summary Delete selected photos
// @Tags views
// @Produce json
// @Param id path string true "view id"
// @Param confirm query bool false "answer to the delete prompt"
// @Success 200 {object} service.DeleteResult
// @Failure 502 {object} errorPayload
// @Router /views/{id}/delete [post]
func DeleteSelected(store *view.Store, bulk service.BulkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := store.Get(c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		confirm, err := strconv.ParseBool(c.Query("confirm", "false"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CONFIRM", "confirm must be true or false")
		}

		res, err := v.DeleteSelected(c.UserContext(), bulk, service.Confirmed(confirm))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
