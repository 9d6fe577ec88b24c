// Package ai talks to an OpenAI-compatible API for embeddings and chat completions.
package ai

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the API answers without any choice.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Embedder turns text into embedding vectors.
type Embedder interface {
	// EmbedTexts returns one vector per input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Completer produces a chat completion from a system and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
