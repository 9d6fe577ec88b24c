package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfchat/internal/ai"
	"pdfchat/internal/model"
	"pdfchat/internal/rag"
	"pdfchat/internal/repository"
	"pdfchat/internal/websearch"
)

const (
	HistoryLimit   = 50
	ChatFilterAll  = "all"
	DefaultTopK    = 3
	DefaultResults = websearch.DefaultMaxResults
)

// Retriever returns the chunks of a user's loaded document most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, userID, query string, k int) ([]rag.ScoredChunk, error)
}

// ChatService answers questions from the loaded PDF or from the web and keeps history.
type ChatService interface {
	AskPDF(ctx context.Context, userID, message string) (string, error)
	AskWeb(ctx context.Context, userID, message string) (string, error)

	// History returns the newest HistoryLimit chats of the user. chatType is
	// "all", "pdf_rag" or "web_search"; empty means all.
	History(ctx context.Context, userID, chatType string) ([]model.ChatRecord, error)

	// UserChats returns every chat of the user, newest first.
	UserChats(ctx context.Context, userID string) ([]model.ChatRecord, error)
}

// ChatOptions tune retrieval and search breadth.
type ChatOptions struct {
	TopK          int
	SearchResults int
}

type chatService struct {
	index     *rag.Index
	retriever Retriever
	completer ai.Completer
	searcher  websearch.Searcher
	chats     repository.ChatRepository
	opts      ChatOptions
	logger    *slog.Logger
}

// NewChatService constructs a ChatService.
func NewChatService(
	index *rag.Index,
	retriever Retriever,
	completer ai.Completer,
	searcher websearch.Searcher,
	chats repository.ChatRepository,
	opts ChatOptions,
	logger *slog.Logger,
) ChatService {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = DefaultResults
	}
	return &chatService{
		index:     index,
		retriever: retriever,
		completer: completer,
		searcher:  searcher,
		chats:     chats,
		opts:      opts,
		logger:    logger.With("component", "chat_service"),
	}
}

func (s *chatService) AskPDF(ctx context.Context, userID, message string) (string, error) {
	if !s.index.Loaded(userID) {
		return "", ErrNoDocument
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}

	hits, err := s.retriever.Retrieve(ctx, userID, message, s.opts.TopK)
	if err != nil {
		if errors.Is(err, rag.ErrNoDocument) {
			return "", ErrNoDocument
		}
		return "", fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}
	if len(hits) == 0 {
		return "", ErrRetrievalFailed
	}

	system, user := rag.BuildPDFPrompt(hits, message)
	answer, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if err := s.save(ctx, userID, model.ChatTypePDF, message, answer, ""); err != nil {
		return "", err
	}
	return answer, nil
}

func (s *chatService) AskWeb(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}

	found, err := s.searcher.Search(ctx, message, s.opts.SearchResults)
	if err != nil {
		s.logger.Warn("web_search_failed", "user_id", userID, "error_message", err.Error())
		found = nil
	}

	results := make([]rag.WebResult, len(found))
	for i, r := range found {
		results[i] = rag.WebResult{Title: r.Title, Body: r.Body, URL: r.URL}
	}

	system, user := rag.BuildWebPrompt(results, message)
	answer, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if err := s.save(ctx, userID, model.ChatTypeWeb, message, answer, message); err != nil {
		return "", err
	}
	return answer, nil
}

func (s *chatService) save(ctx context.Context, userID string, t model.ChatType, message, answer, query string) error {
	rec := &model.ChatRecord{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        t,
		Message:     message,
		Response:    answer,
		SearchQuery: query,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.chats.Create(ctx, rec); err != nil {
		return fmt.Errorf("save chat: %w", err)
	}
	return nil
}

func (s *chatService) History(ctx context.Context, userID, chatType string) ([]model.ChatRecord, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	q := repository.ChatQuery{UserID: userID, Limit: HistoryLimit}
	if chatType != "" && chatType != ChatFilterAll {
		t := model.ChatType(chatType)
		if !t.Valid() {
			return nil, ErrInvalidChatType
		}
		q.Type = t
	}
	return s.chats.List(ctx, q)
}

func (s *chatService) UserChats(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.chats.List(ctx, repository.ChatQuery{UserID: userID})
}
