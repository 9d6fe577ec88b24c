package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, rec *model.ChatRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockChatRepository) List(ctx context.Context, q repository.ChatQuery) ([]model.ChatRecord, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatRecord), args.Error(1)
}
