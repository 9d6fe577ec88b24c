package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfchat/internal/model"
)

type MockPDFRepository struct {
	mock.Mock
}

func (m *MockPDFRepository) Create(ctx context.Context, doc *model.PDFDocument) (*model.PDFDocument, error) {
	args := m.Called(ctx, doc)
	if f, ok := args.Get(0).(func(context.Context, *model.PDFDocument) *model.PDFDocument); ok {
		return f(ctx, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PDFDocument), args.Error(1)
}

func (m *MockPDFRepository) ListByUser(ctx context.Context, userID string) ([]model.PDFDocument, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PDFDocument), args.Error(1)
}
