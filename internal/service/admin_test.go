package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/model"
	"pdfchat/internal/repository"
	repoMocks "pdfchat/internal/repository/mocks"
	storeMocks "pdfchat/internal/storage/mocks"
)

func TestAdminService_UserPDFs(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns archived files", func(t *testing.T) {
		pdfs := new(repoMocks.MockPDFRepository)
		st := new(storeMocks.MockStorage)
		pdfs.On("ListByUser", ctx, "u1").Return([]model.PDFDocument{
			{ID: "p1", StoragePath: "pdfs/u1/p1.pdf"},
			{ID: "p2"},
			{ID: "p3", StoragePath: "pdfs/u1/p3.pdf"},
		}, nil)
		st.On("PresignGet", ctx, "pdfs/u1/p1.pdf", downloadURLExpiry).Return("https://minio/p1?sig", nil)
		st.On("PresignGet", ctx, "pdfs/u1/p3.pdf", downloadURLExpiry).Return("", errors.New("no such key"))

		svc := NewAdminService(new(repoMocks.MockUserRepository), pdfs, nil, st, discardLogger())
		out, err := svc.UserPDFs(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "https://minio/p1?sig", out[0].DownloadURL)
		assert.Empty(t, out[1].DownloadURL)
		assert.Empty(t, out[2].DownloadURL)
		assert.Equal(t, "p3", out[2].ID)
		st.AssertExpectations(t)
	})

	t.Run("without object storage", func(t *testing.T) {
		pdfs := new(repoMocks.MockPDFRepository)
		pdfs.On("ListByUser", ctx, "u1").Return([]model.PDFDocument{{ID: "p1", StoragePath: "pdfs/u1/p1.pdf"}}, nil)

		out, err := NewAdminService(nil, pdfs, nil, nil, discardLogger()).UserPDFs(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Empty(t, out[0].DownloadURL)
	})

	t.Run("repository error", func(t *testing.T) {
		pdfs := new(repoMocks.MockPDFRepository)
		pdfs.On("ListByUser", ctx, "u1").Return(nil, errors.New("db down"))

		_, err := NewAdminService(nil, pdfs, nil, nil, discardLogger()).UserPDFs(ctx, "u1")
		assert.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := NewAdminService(nil, nil, nil, nil, discardLogger()).UserPDFs(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestAdminService_ListUsersAndChats(t *testing.T) {
	ctx := context.Background()

	users := new(repoMocks.MockUserRepository)
	users.On("List", ctx).Return([]model.User{{ID: "u1"}, {ID: "u2"}}, nil)

	chats := new(repoMocks.MockChatRepository)
	chats.On("List", ctx, repository.ChatQuery{UserID: "u1"}).Return([]model.ChatRecord{{ID: "c1"}}, nil)
	chatSvc := NewChatService(nil, nil, nil, nil, chats, ChatOptions{}, discardLogger())

	svc := NewAdminService(users, nil, chatSvc, nil, discardLogger())

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	recs, err := svc.UserChats(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	users.AssertExpectations(t)
	chats.AssertExpectations(t)
}
