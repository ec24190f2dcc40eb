package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"photoapi/internal/model"
	"photoapi/internal/repository"
	repoMocks "photoapi/internal/repository/mocks"
	"photoapi/internal/storage"
	storeMocks "photoapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPhotoService_Upload(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1690598843012).UTC()

	tests := []struct {
		name             string
		collectionID     string
		originalFilename string
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			collectionID:     "c1",
			originalFilename: "beach day.jpg",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader {
				r := strings.NewReader("jpeg")
				mStore.On("Put", ctx, "c1/1690598843012-beach_day.jpg", r, storage.PutObjectOptions{
					Size:        4,
					ContentType: "image/jpeg",
					Metadata:    map[string]string{"original-filename": "beach day.jpg"},
					NoOverwrite: true,
				}).Return(storage.ObjectInfo{Key: "c1/1690598843012-beach_day.jpg", Size: 4}, nil)

				mRepo.On("CreatePhoto", ctx, mock.MatchedBy(func(p *model.Photo) bool {
					return p.ID != "" && p.CollectionID == "c1" && p.StoragePath == "c1/1690598843012-beach_day.jpg" && p.CreatedAt.Equal(fixed)
				})).Return(&model.Photo{ID: "gen-id"}, nil)
				return r
			},
		},
		{
			name:             "validation error - nil reader",
			collectionID:     "c1",
			originalFilename: "a.jpg",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "validation error - missing collection",
			originalFilename: "a.jpg",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: ErrIDRequired,
		},
		{
			name:             "existing object is not overwritten",
			collectionID:     "c1",
			originalFilename: "a.jpg",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader {
				r := strings.NewReader("jpeg")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).Return(storage.ObjectInfo{}, storage.ErrObjectExists)
				return r
			},
			wantErr: storage.ErrObjectExists,
		},
		{
			name:             "repository error with successful rollback",
			collectionID:     "c1",
			originalFilename: "a.jpg",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader {
				r := strings.NewReader("jpeg")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("CreatePhoto", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, "c1/1690598843012-a.jpg").Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			collectionID:     "c1",
			originalFilename: "a.jpg",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockCollectionRepository) io.Reader {
				r := strings.NewReader("jpeg")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("CreatePhoto", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockCollectionRepository)
			svc := &photoService{store: mStore, repo: mRepo, now: func() time.Time { return fixed }}

			r := tt.setupMocks(mStore, mRepo)

			photo, err := svc.Upload(ctx, tt.collectionID, r, tt.originalFilename, "image/jpeg", 4)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, photo)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestPhotoService_ListCollections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockCollectionRepository)
		wantErr    bool
		wantTotal  int
	}{
		{
			name:   "happy path",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockCollectionRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Collection]{
						Items: []model.Collection{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			wantTotal: 2,
		},
		{
			name:   "pagination boundary - zero limit uses default",
			limit:  0,
			offset: -1,
			setupMocks: func(mRepo *repoMocks.MockCollectionRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Collection]{Items: []model.Collection{}, Total: 0}, nil)
			},
		},
		{
			name:  "repository error",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockCollectionRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockCollectionRepository)
			svc := NewPhotoService(nil, mRepo)

			tt.setupMocks(mRepo)

			res, err := svc.ListCollections(ctx, tt.limit, tt.offset)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantTotal, res.Total)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestPhotoService_GetCollection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockCollectionRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "c1",
			setupMocks: func(mRepo *repoMocks.MockCollectionRepository) {
				mRepo.On("FindWithPhotos", ctx, "c1").Return(&model.Collection{ID: "c1"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			setupMocks: func(mRepo *repoMocks.MockCollectionRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing",
			setupMocks: func(mRepo *repoMocks.MockCollectionRepository) {
				mRepo.On("FindWithPhotos", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockCollectionRepository)
			svc := NewPhotoService(nil, mRepo)

			tt.setupMocks(mRepo)

			c, err := svc.GetCollection(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.id, c.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUploadName(t *testing.T) {
	assert.Equal(t, "a.jpg", uploadName("../../a.jpg"))
	assert.Equal(t, "b.png", uploadName(`C:\Users\me\b.png`))
	assert.Equal(t, "my_photo.jpg", uploadName("my photo.jpg"))
	assert.Equal(t, "photo", uploadName(""))
}
