package mocks

import (
	"context"

	"photoapi/internal/model"
	"photoapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockBulkService struct {
	mock.Mock
}

func (m *MockBulkService) Download(ctx context.Context, photos []model.Photo) (*service.DownloadResult, error) {
	args := m.Called(ctx, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

// Delete evaluates the confirmer like the real service does, so tests observe
// the user's answer through the recorded call.
func (m *MockBulkService) Delete(ctx context.Context, photos []model.Photo, confirm service.Confirmer) (*service.DeleteResult, error) {
	confirmed := confirm != nil && confirm.Confirm(ctx, service.DeletePrompt)
	args := m.Called(ctx, photos, confirmed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeleteResult), args.Error(1)
}
