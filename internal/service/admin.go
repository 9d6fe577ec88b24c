package service

import (
	"context"
	"log/slog"
	"time"

	"pdfchat/internal/model"
	"pdfchat/internal/repository"
	"pdfchat/internal/storage"
)

const downloadURLExpiry = 15 * time.Minute

// AdminPDF is a user's PDF as shown to the administrator.
type AdminPDF struct {
	model.PDFDocument
	DownloadURL string `json:"download_url,omitempty"`
}

// AdminService exposes read-only views over all users.
type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	// UserPDFs attaches a short-lived download URL to every archived file.
	UserPDFs(ctx context.Context, userID string) ([]AdminPDF, error)
	UserChats(ctx context.Context, userID string) ([]model.ChatRecord, error)
}

type adminService struct {
	users  repository.UserRepository
	pdfs   repository.PDFRepository
	chats  ChatService
	store  storage.Storage
	logger *slog.Logger
}

// NewAdminService constructs an AdminService. store may be nil.
func NewAdminService(
	users repository.UserRepository,
	pdfs repository.PDFRepository,
	chats ChatService,
	store storage.Storage,
	logger *slog.Logger,
) AdminService {
	return &adminService{
		users:  users,
		pdfs:   pdfs,
		chats:  chats,
		store:  store,
		logger: logger.With("component", "admin_service"),
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *adminService) UserPDFs(ctx context.Context, userID string) ([]AdminPDF, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	docs, err := s.pdfs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]AdminPDF, len(docs))
	for i, d := range docs {
		out[i] = AdminPDF{PDFDocument: d}
		if s.store == nil || d.StoragePath == "" {
			continue
		}
		u, err := s.store.PresignGet(ctx, d.StoragePath, downloadURLExpiry)
		if err != nil {
			s.logger.Warn("presign_failed", "storage_path", d.StoragePath, "error_message", err.Error())
			continue
		}
		out[i].DownloadURL = u
	}
	return out, nil
}

func (s *adminService) UserChats(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	return s.chats.UserChats(ctx, userID)
}
