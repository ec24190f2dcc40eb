package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"photoapi/internal/model"
	"photoapi/internal/repository"
	"photoapi/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("collection not found")
	ErrReaderNil  = errors.New("reader is nil")
)

// CollectionListResult is the service-level DTO for paginated collections.
type CollectionListResult struct {
	Items []model.Collection `json:"data"`
	Total int                `json:"total"`
}

// PhotoService defines the read and upload use cases around collections.
type PhotoService interface {
	// ListCollections returns collections using limit/offset and a total count.
	ListCollections(ctx context.Context, limit, offset int) (*CollectionListResult, error)

	// GetCollection returns a collection with its photos.
	GetCollection(ctx context.Context, id string) (*model.Collection, error)

	// Upload stores the content under "<collectionID>/<unix-ms>-<name>" without overwriting,
	// then records the photo. The object is removed again if the record cannot be saved.
	Upload(ctx context.Context, collectionID string, r io.Reader, originalFilename, contentType string, size int64) (*model.Photo, error)
}

type photoService struct {
	store storage.Storage
	repo  repository.CollectionRepository
	now   func() time.Time
}

// NewPhotoService constructs a new PhotoService.
func NewPhotoService(store storage.Storage, repo repository.CollectionRepository) PhotoService {
	return &photoService{store: store, repo: repo, now: time.Now}
}

// ListCollections returns paginated collections without exposing repository types.
func (s *photoService) ListCollections(ctx context.Context, limit, offset int) (*CollectionListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &CollectionListResult{Items: res.Items, Total: res.Total}, nil
}

// GetCollection returns a collection by ID with nested photos.
func (s *photoService) GetCollection(ctx context.Context, id string) (*model.Collection, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.repo.FindWithPhotos(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *photoService) Upload(ctx context.Context, collectionID string, r io.Reader, originalFilename, contentType string, size int64) (*model.Photo, error) {
	if collectionID == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s/%d-%s", collectionID, now.UnixMilli(), uploadName(originalFilename))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
		NoOverwrite: true,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	photo := &model.Photo{
		ID:           uuid.New().String(),
		CollectionID: collectionID,
		StoragePath:  objInfo.Key,
		CreatedAt:    now,
	}
	stored, err := s.repo.CreatePhoto(ctx, photo)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// uploadName keeps only the base name and replaces separators that would
// otherwise create extra path segments in the bucket.
func uploadName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "photo"
	}
	return strings.ReplaceAll(name, " ", "_")
}
