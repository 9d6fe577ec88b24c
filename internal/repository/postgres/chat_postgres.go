package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

// ChatPostgres is a PostgreSQL implementation of repository.ChatRepository.
type ChatPostgres struct {
	db *sql.DB
}

// NewChatPostgres creates a new ChatPostgres repository.
func NewChatPostgres(db *sql.DB) *ChatPostgres {
	return &ChatPostgres{db: db}
}

var _ repository.ChatRepository = (*ChatPostgres)(nil)

// Create inserts a chat record.
func (r *ChatPostgres) Create(ctx context.Context, rec *model.ChatRecord) error {
	const q = `
		INSERT INTO chats (id, user_id, type, message, response, search_query, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.UserID,
		string(rec.Type),
		rec.Message,
		rec.Response,
		rec.SearchQuery,
		rec.Timestamp,
	)
	return mapError(err)
}

// List returns chats of one user, optionally filtered by type and limited, newest first.
func (r *ChatPostgres) List(ctx context.Context, cq repository.ChatQuery) ([]model.ChatRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, type, message, response, search_query, created_at
		FROM chats
		WHERE user_id = $1`)
	args := []any{cq.UserID}
	if cq.Type != "" {
		args = append(args, string(cq.Type))
		fmt.Fprintf(&sb, " AND type = $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	if cq.Limit > 0 {
		args = append(args, cq.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ChatRecord, 0)
	for rows.Next() {
		var (
			c        model.ChatRecord
			chatType string
		)
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&chatType,
			&c.Message,
			&c.Response,
			&c.SearchQuery,
			&c.Timestamp,
		); err != nil {
			return nil, err
		}
		c.Type = model.ChatType(chatType)
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
