package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pdfchat/internal/metrics"
)

// ErrNoDocument is returned when the user has no PDF loaded.
var ErrNoDocument = errors.New("no document loaded")

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Retriever finds the chunks of a user's loaded document most relevant to a query.
type Retriever struct {
	index    *Index
	embedder QueryEmbedder
	metrics  *metrics.RAG
}

// NewRetriever returns a Retriever over index. m may be nil.
func NewRetriever(index *Index, embedder QueryEmbedder, m *metrics.RAG) *Retriever {
	return &Retriever{index: index, embedder: embedder, metrics: m}
}

// Retrieve embeds query and returns the top k chunks of the user's document.
func (r *Retriever) Retrieve(ctx context.Context, userID, query string, k int) ([]ScoredChunk, error) {
	ctx, span := otel.Tracer("pdfchat/rag").Start(ctx, "rag.Retrieve")
	defer span.End()

	doc, ok := r.index.Get(userID)
	if !ok || len(doc.Chunks) == 0 {
		return nil, ErrNoDocument
	}
	span.SetAttributes(
		attribute.Int("rag.chunks", len(doc.Chunks)),
		attribute.Int("rag.top_k", k),
	)

	start := time.Now()
	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embed query")
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits := TopK(vec, doc.Chunks, k)
	r.metrics.ObserveRetrieval(time.Since(start))
	return hits, nil
}
