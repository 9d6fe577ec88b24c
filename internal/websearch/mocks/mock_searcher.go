package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfchat/internal/websearch"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, limit int) ([]websearch.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]websearch.SearchResult), args.Error(1)
}
