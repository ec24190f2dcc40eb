package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
