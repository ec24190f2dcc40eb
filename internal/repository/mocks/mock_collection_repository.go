package mocks

import (
	"context"

	"photoapi/internal/model"
	"photoapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) FindWithPhotos(ctx context.Context, id string) (*model.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Collection), args.Error(1)
}

func (m *MockCollectionRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Collection], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Collection]), args.Error(1)
}

func (m *MockCollectionRepository) CreatePhoto(ctx context.Context, p *model.Photo) (*model.Photo, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockCollectionRepository) DeletePhotos(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
