package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"pdfchat/internal/ai"
	"pdfchat/internal/config"
	"pdfchat/internal/model"
	"pdfchat/internal/pdftext"
	"pdfchat/internal/rag"
	"pdfchat/internal/repository"
	"pdfchat/internal/storage"
)

// CurrentPDF describes the document loaded for a user.
type CurrentPDF struct {
	Filename string    `json:"filename"`
	Chunks   int       `json:"chunks"`
	LoadedAt time.Time `json:"loaded_at"`
}

// PDFService indexes uploaded PDFs for question answering.
type PDFService interface {
	// Upload extracts, chunks and embeds data, replaces the user's loaded
	// document and archives the file. Archiving failures are logged only.
	Upload(ctx context.Context, userID, filename string, data []byte) (*model.PDFDocument, error)

	// Current returns ErrNoDocument when nothing is loaded.
	Current(userID string) (*CurrentPDF, error)

	// Release forgets the user's loaded document.
	Release(userID string)

	ListByUser(ctx context.Context, userID string) ([]model.PDFDocument, error)
}

type pdfService struct {
	extractor pdftext.Extractor
	embedder  ai.Embedder
	index     *rag.Index
	store     storage.Storage
	repo      repository.PDFRepository
	rag       config.RAGConfig
	logger    *slog.Logger
}

// NewPDFService constructs a PDFService. store may be nil when object storage is disabled.
func NewPDFService(
	extractor pdftext.Extractor,
	embedder ai.Embedder,
	index *rag.Index,
	store storage.Storage,
	repo repository.PDFRepository,
	ragCfg config.RAGConfig,
	logger *slog.Logger,
) PDFService {
	return &pdfService{
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		store:     store,
		repo:      repo,
		rag:       ragCfg,
		logger:    logger.With("component", "pdf_service"),
	}
}

func (s *pdfService) Upload(ctx context.Context, userID, filename string, data []byte) (*model.PDFDocument, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	ctx, span := otel.Tracer("pdfchat/service").Start(ctx, "pdf.Upload")
	defer span.End()

	filename = cleanFilename(filename)
	span.SetAttributes(attribute.String("pdf.filename", filename), attribute.Int("pdf.size", len(data)))

	text, err := s.extractor.Extract(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdftext.ErrNoText) || errors.Is(err, pdftext.ErrInvalidPDF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	texts := rag.ChunkText(text, s.rag.ChunkSize, s.rag.ChunkOverlap)
	if len(texts) == 0 {
		return nil, ErrNoText
	}

	vecs, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrEmbeddingFailed, len(vecs), len(texts))
	}

	chunks := make([]rag.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = rag.Chunk{Index: i, Content: t, Embedding: vecs[i]}
	}

	now := time.Now().UTC()
	s.index.Put(userID, &rag.DocumentIndex{Filename: filename, Chunks: chunks, LoadedAt: now})
	span.SetAttributes(attribute.Int("pdf.chunks", len(chunks)))

	doc := &model.PDFDocument{
		ID:          uuid.New().String(),
		UserID:      userID,
		Filename:    filename,
		Size:        int64(len(data)),
		ChunksCount: len(chunks),
		UploadedAt:  now,
	}
	return s.persist(ctx, doc, data), nil
}

// persist archives the raw file and saves its metadata. Failures are logged
// and the returned document reflects whatever was stored.
func (s *pdfService) persist(ctx context.Context, doc *model.PDFDocument, data []byte) *model.PDFDocument {
	log := s.logger.With("user_id", doc.UserID, "pdf_id", doc.ID)

	if s.store != nil {
		key := fmt.Sprintf("pdfs/%s/%s.pdf", doc.UserID, doc.ID)
		_, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
			Size:        int64(len(data)),
			ContentType: "application/pdf",
			Metadata:    map[string]string{"original-filename": doc.Filename},
		})
		if err != nil {
			log.Warn("pdf_archive_failed", "error_message", err.Error())
		} else {
			doc.StoragePath = key
		}
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		log.Warn("pdf_metadata_save_failed", "error_message", err.Error())
		if doc.StoragePath != "" {
			if delErr := s.store.Delete(ctx, doc.StoragePath); delErr != nil {
				log.Error("pdf_archive_rollback_failed", "storage_path", doc.StoragePath, "error_message", delErr.Error())
			}
			doc.StoragePath = ""
		}
		return doc
	}
	if stored == nil {
		return doc
	}
	return stored
}

func (s *pdfService) Current(userID string) (*CurrentPDF, error) {
	doc, ok := s.index.Get(userID)
	if !ok || len(doc.Chunks) == 0 {
		return nil, ErrNoDocument
	}
	return &CurrentPDF{Filename: doc.Filename, Chunks: len(doc.Chunks), LoadedAt: doc.LoadedAt}, nil
}

func (s *pdfService) Release(userID string) {
	s.index.Drop(userID)
}

func (s *pdfService) ListByUser(ctx context.Context, userID string) ([]model.PDFDocument, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByUser(ctx, userID)
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}
