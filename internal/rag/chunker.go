// Package rag implements the retrieval half of PDF question answering:
// splitting text into overlapping chunks, holding per-user embeddings in
// memory and ranking chunks against a query by cosine similarity.
package rag

import "strings"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkText splits text into windows of size runes, each starting
// size-overlap runes after the previous one. Whitespace-only windows are
// skipped. Chunking stops after the window that reaches the end of the text.
// Non-positive size falls back to DefaultChunkSize and an overlap outside
// [0, size) falls back to zero.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
