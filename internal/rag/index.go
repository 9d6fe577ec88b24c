package rag

import (
	"sync"
	"time"
)

// Chunk is one embedded window of a document.
type Chunk struct {
	Index     int
	Content   string
	Embedding []float64
}

// DocumentIndex is the indexed form of one uploaded PDF.
type DocumentIndex struct {
	Filename string
	Chunks   []Chunk
	LoadedAt time.Time
}

// Index holds at most one document per user. It is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	docs map[string]*DocumentIndex

	// onChange receives the number of loaded documents after every mutation.
	onChange func(n int)
}

// NewIndex returns an empty index. onChange may be nil.
func NewIndex(onChange func(n int)) *Index {
	return &Index{docs: make(map[string]*DocumentIndex), onChange: onChange}
}

// Put replaces the user's document.
func (x *Index) Put(userID string, doc *DocumentIndex) {
	x.mu.Lock()
	x.docs[userID] = doc
	n := len(x.docs)
	x.mu.Unlock()
	x.notify(n)
}

// Get returns the user's document, if any.
func (x *Index) Get(userID string) (*DocumentIndex, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	doc, ok := x.docs[userID]
	return doc, ok
}

// Loaded reports whether the user has a document with at least one chunk.
func (x *Index) Loaded(userID string) bool {
	doc, ok := x.Get(userID)
	return ok && len(doc.Chunks) > 0
}

// Drop removes the user's document. Dropping a missing document is a no-op.
func (x *Index) Drop(userID string) {
	x.mu.Lock()
	_, ok := x.docs[userID]
	delete(x.docs, userID)
	n := len(x.docs)
	x.mu.Unlock()
	if ok {
		x.notify(n)
	}
}

// Len returns the number of users with a loaded document.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

func (x *Index) notify(n int) {
	if x.onChange != nil {
		x.onChange(n)
	}
}
