package mocks

import (
	"context"
	"io"

	"photoapi/internal/model"
	"photoapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) ListCollections(ctx context.Context, limit, offset int) (*service.CollectionListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CollectionListResult), args.Error(1)
}

func (m *MockPhotoService) GetCollection(ctx context.Context, id string) (*model.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Collection), args.Error(1)
}

func (m *MockPhotoService) Upload(ctx context.Context, collectionID string, r io.Reader, originalFilename, contentType string, size int64) (*model.Photo, error) {
	args := m.Called(ctx, collectionID, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}
