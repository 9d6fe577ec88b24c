// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic.
package repository

import (
	"context"
	"errors"

	"pdfchat/internal/model"
)

// ErrDuplicate is returned by Create when a unique constraint is violated.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the username or email is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByUsername returns sql.ErrNoRows when no user has that username.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// ExistsByUsernameOrEmail reports whether any user has the username or the email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// List returns all users, newest first.
	List(ctx context.Context) ([]model.User, error)
}

// PDFRepository persists metadata of uploaded PDFs.
type PDFRepository interface {
	Create(ctx context.Context, doc *model.PDFDocument) (*model.PDFDocument, error)

	// ListByUser returns the user's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.PDFDocument, error)
}

// ChatQuery filters chat history.
// An empty Type matches every chat type; Limit <= 0 means no limit.
type ChatQuery struct {
	UserID string
	Type   model.ChatType
	Limit  int
}

// ChatRepository persists chat history.
type ChatRepository interface {
	Create(ctx context.Context, rec *model.ChatRecord) error

	// List returns chats matching q, newest first.
	List(ctx context.Context, q ChatQuery) ([]model.ChatRecord, error)
}
