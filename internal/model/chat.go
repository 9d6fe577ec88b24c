package model

import "time"

// ChatType identifies which flow produced a chat record.
type ChatType string

const (
	ChatTypePDF ChatType = "pdf_rag"
	ChatTypeWeb ChatType = "web_search"
)

// Valid reports whether t is a known chat type.
func (t ChatType) Valid() bool {
	return t == ChatTypePDF || t == ChatTypeWeb
}

// ChatRecord is one question/answer exchange.
type ChatRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        ChatType  `json:"type"`
	Message     string    `json:"message"`
	Response    string    `json:"response"`
	SearchQuery string    `json:"search_query,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
