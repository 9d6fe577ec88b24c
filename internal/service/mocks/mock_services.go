package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfchat/internal/model"
	"pdfchat/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, in service.SignupInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) AdminLogin(username, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

type MockPDFService struct {
	mock.Mock
}

func (m *MockPDFService) Upload(ctx context.Context, userID, filename string, data []byte) (*model.PDFDocument, error) {
	args := m.Called(ctx, userID, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PDFDocument), args.Error(1)
}

func (m *MockPDFService) Current(userID string) (*service.CurrentPDF, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CurrentPDF), args.Error(1)
}

func (m *MockPDFService) Release(userID string) {
	m.Called(userID)
}

func (m *MockPDFService) ListByUser(ctx context.Context, userID string) ([]model.PDFDocument, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PDFDocument), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) AskPDF(ctx context.Context, userID, message string) (string, error) {
	args := m.Called(ctx, userID, message)
	return args.String(0), args.Error(1)
}

func (m *MockChatService) AskWeb(ctx context.Context, userID, message string) (string, error) {
	args := m.Called(ctx, userID, message)
	return args.String(0), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, userID, chatType string) ([]model.ChatRecord, error) {
	args := m.Called(ctx, userID, chatType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatRecord), args.Error(1)
}

func (m *MockChatService) UserChats(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatRecord), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockAdminService) UserPDFs(ctx context.Context, userID string) ([]service.AdminPDF, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.AdminPDF), args.Error(1)
}

func (m *MockAdminService) UserChats(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatRecord), args.Error(1)
}
