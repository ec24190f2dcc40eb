package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photoapi/internal/logging"
	"photoapi/internal/model"
	"photoapi/internal/service"
	serviceMocks "photoapi/internal/service/mocks"
	"photoapi/internal/storage"
	"photoapi/internal/view"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	collectionID = uuid.New().String()
	photoP1      = model.Photo{ID: "p1", CollectionID: collectionID, StoragePath: collectionID + "/p1.jpg"}
	photoP2      = model.Photo{ID: "p2", CollectionID: collectionID, StoragePath: collectionID + "/p2.jpg", S3Key: "uploads/p2.jpg"}
)

func newViewStore(t *testing.T) *view.Store {
	t.Helper()
	return view.NewStore(func(ctx context.Context, id string) (*model.Collection, error) {
		if id != collectionID {
			return nil, service.ErrNotFound
		}
		return &model.Collection{ID: id, Name: "Trip", Photos: []model.Photo{photoP1, photoP2}}, nil
	}, time.Minute, logging.Discard())
}

func openView(t *testing.T, store *view.Store, selected ...string) *view.View {
	t.Helper()
	v := store.Open(collectionID)
	<-v.Ready()
	for _, id := range selected {
		_, err := v.Toggle(id)
		require.NoError(t, err)
	}
	return v
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListCollections(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhotoService)
	app := fiber.New()
	app.Get("/collections", ListCollections(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.CollectionListResult{
			Items: []model.Collection{{ID: collectionID, Name: "Trip"}},
			Total: 1,
		}
		mockSvc.On("ListCollections", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/collections?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.CollectionListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/collections?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/collections?offset=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListCollections", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/collections", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetCollection(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhotoService)
	app := fiber.New()
	app.Get("/collections/:id", GetCollection(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("GetCollection", mock.Anything, collectionID).
			Return(&model.Collection{ID: collectionID, Photos: []model.Photo{photoP1}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/collections/"+collectionID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.Collection
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, collectionID, result.ID)
		assert.Len(t, result.Photos, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("GetCollection", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/collections/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/collections/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("GetCollection", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/collections/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func multipartPhoto(t *testing.T, name string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	part.Write([]byte("jpeg bytes"))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadPhoto(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhotoService)
	app := fiber.New()
	app.Post("/collections/:id/photos", UploadPhoto(mockSvc))
	url := "/collections/" + collectionID + "/photos"

	t.Run("success", func(t *testing.T) {
		body, ct := multipartPhoto(t, "beach.jpg")
		mockSvc.On("Upload", mock.Anything, collectionID, mock.Anything, "beach.jpg", mock.Anything, int64(10)).
			Return(&model.Photo{ID: "new", CollectionID: collectionID}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result model.Photo
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "new", result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, url, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("name taken", func(t *testing.T) {
		body, ct := multipartPhoto(t, "beach.jpg")
		mockSvc.On("Upload", mock.Anything, collectionID, mock.Anything, "beach.jpg", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("upload to storage: %w", storage.ErrObjectExists)).Once()

		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "ALREADY_EXISTS", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartPhoto(t, "beach.jpg")
		mockSvc.On("Upload", mock.Anything, collectionID, mock.Anything, "beach.jpg", mock.Anything, mock.Anything).
			Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestOpenView(t *testing.T) {
	store := newViewStore(t)
	app := fiber.New()
	app.Post("/collections/:id/views", OpenView(store))

	t.Run("wait for load", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/collections/"+collectionID+"/views?wait=true", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var st view.State
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
		assert.False(t, st.Loading)
		assert.Equal(t, "/views/"+st.ID, resp.Header.Get("Location"))
		require.NotNil(t, st.Collection)
		assert.Len(t, st.Collection.Photos, 2)
	})

	t.Run("unknown collection reports error state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/collections/"+uuid.New().String()+"/views?wait=true", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var st view.State
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
		assert.Equal(t, "collection not found", st.ErrorMessage)
		assert.Nil(t, st.Collection)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/collections/nope/views", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOpenView_LoadsRequestedCollectionAfterReturning(t *testing.T) {
	release := make(chan struct{})
	loaded := make(chan string, 1)
	store := view.NewStore(func(ctx context.Context, id string) (*model.Collection, error) {
		<-release
		loaded <- id
		return &model.Collection{ID: id, Name: "Trip"}, nil
	}, time.Minute, logging.Discard())

	app := fiber.New()
	app.Post("/collections/:id/views", OpenView(store))
	app.Get("/collections/:id/views", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/collections/"+collectionID+"/views", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var st view.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.Loading)

	other := "/collections/" + strings.Repeat("z", len(collectionID)) + "/views"
	for i := 0; i < 20; i++ {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, other, nil))
		require.NoError(t, err)
	}
	close(release)

	select {
	case got := <-loaded:
		assert.Equal(t, collectionID, got)
	case <-time.After(time.Second):
		t.Fatal("collection was not loaded")
	}

	v, err := store.Get(st.ID)
	require.NoError(t, err)
	<-v.Ready()
	assert.Equal(t, collectionID, v.State().CollectionID)
	require.NotNil(t, v.State().Collection)
	assert.Equal(t, collectionID, v.State().Collection.ID)
}

func TestViewInteractions(t *testing.T) {
	store := newViewStore(t)
	app := fiber.New()
	app.Get("/views/:id", GetView(store))
	app.Delete("/views/:id", CloseView(store))
	app.Post("/views/:id/selection/:photoId", ToggleSelection(store))
	app.Delete("/views/:id/selection", ClearSelection(store))
	app.Put("/views/:id/modal", OpenModal(store))
	app.Delete("/views/:id/modal", CloseModal(store))

	v := openView(t, store)
	base := "/views/" + v.ID()

	t.Run("toggle", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, base+"/selection/p2", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body toggleResponse
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body.Selected)
		assert.Equal(t, 1, body.Count)
	})

	t.Run("toggle unknown photo", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, base+"/selection/zzz", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "PHOTO_NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("modal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, base+"/modal", strings.NewReader(`{"url":"https://cdn/p1.jpg"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, base, nil))
		var st view.State
		json.NewDecoder(resp.Body).Decode(&st)
		assert.Equal(t, "https://cdn/p1.jpg", st.ModalImage)
		assert.True(t, st.SuspendScroll)
		assert.Len(t, st.SelectedPhotos, 1)

		resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, base+"/modal", nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, v.State().ModalImage)
	})

	t.Run("modal without url", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, base+"/modal", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "URL_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("clear selection", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, base+"/selection", nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, v.State().SelectedPhotos)
	})

	t.Run("close", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, base, nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, base, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "VIEW_NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}

func TestDownloadSelected(t *testing.T) {
	store := newViewStore(t)
	bulk := new(serviceMocks.MockBulkService)
	app := fiber.New()
	app.Post("/views/:id/download", DownloadSelected(store, bulk))

	t.Run("single photo redirects", func(t *testing.T) {
		v := openView(t, store, "p1")
		bulk.On("Download", mock.Anything, []model.Photo{photoP1}).
			Return(&service.DownloadResult{File: &service.SavedFile{URL: "https://minio/signed", Filename: "p1.jpg"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/download", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://minio/signed", resp.Header.Get("Location"))
		assert.Equal(t, "p1.jpg", resp.Header.Get("X-Filename"))
		assert.Empty(t, v.State().SelectedPhotos)
	})

	t.Run("archive", func(t *testing.T) {
		v := openView(t, store, "p1", "p2")
		bulk.On("Download", mock.Anything, []model.Photo{photoP1, photoP2}).
			Return(&service.DownloadResult{
				Archive: &service.Archive{Name: "photos.zip", Data: []byte("PK"), Entries: []string{"p1.jpg"}},
				Results: []model.BulkOperationResult{
					{PhotoID: "p1", Stage: model.StageFetch, Outcome: model.OutcomeSuccess},
					{PhotoID: "p2", Stage: model.StageFetch, Outcome: model.OutcomeFailure, Detail: "404"},
				},
			}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/download", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="photos.zip"`)
		assert.Equal(t, "1", resp.Header.Get(FailedItemsHeader))
		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "PK", string(data))
	})

	t.Run("nothing fetched", func(t *testing.T) {
		v := openView(t, store, "p1", "p2")
		bulk.On("Download", mock.Anything, mock.Anything).Return(nil, service.ErrNothingToArchive).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/download", nil))

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "DOWNLOAD_FAILED", decodeError(t, resp).Error.Code)
		assert.Len(t, v.State().SelectedPhotos, 2)
	})

	t.Run("unknown view", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/missing/download", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	bulk.AssertExpectations(t)
}

func TestDeleteSelected(t *testing.T) {
	store := newViewStore(t)
	bulk := new(serviceMocks.MockBulkService)
	app := fiber.New()
	app.Post("/views/:id/delete", DeleteSelected(store, bulk))

	t.Run("confirmed", func(t *testing.T) {
		v := openView(t, store, "p1", "p2")
		bulk.On("Delete", mock.Anything, []model.Photo{photoP1, photoP2}, true).
			Return(&service.DeleteResult{Deleted: []string{"p1", "p2"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/delete?confirm=true", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res service.DeleteResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, []string{"p1", "p2"}, res.Deleted)
		st := v.State()
		assert.Empty(t, st.Collection.Photos)
		assert.Empty(t, st.SelectedPhotos)
	})

	t.Run("not confirmed", func(t *testing.T) {
		v := openView(t, store, "p1")
		bulk.On("Delete", mock.Anything, []model.Photo{photoP1}, false).
			Return(&service.DeleteResult{Declined: true}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/delete", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res service.DeleteResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Declined)
		assert.Len(t, v.State().Collection.Photos, 2)
	})

	t.Run("record store error is surfaced", func(t *testing.T) {
		v := openView(t, store, "p1")
		bulk.On("Delete", mock.Anything, mock.Anything, true).
			Return(nil, fmt.Errorf("%w: %w", service.ErrRecordStore, errors.New("permission denied"))).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/delete?confirm=true", nil))

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "RECORD_STORE_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "permission denied")
		assert.Len(t, v.State().SelectedPhotos, 1)
	})

	t.Run("invalid confirm", func(t *testing.T) {
		v := openView(t, store)
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/views/"+v.ID()+"/delete?confirm=maybe", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CONFIRM", decodeError(t, resp).Error.Code)
	})

	bulk.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, nil, new(serviceMocks.MockPhotoService), new(serviceMocks.MockBulkService), newViewStore(t))

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})
}
