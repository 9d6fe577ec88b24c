package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAG(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewRAG(reg)
	require.NoError(t, err)

	m.ObserveEmbedding(10, nil)
	m.ObserveEmbedding(3, errors.New("boom"))
	m.ObserveRetrieval(20 * time.Millisecond)
	m.SetLoadedDocuments(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.embeddingRequests.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.embeddingRequests.WithLabelValues("error")))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.embeddedTexts))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.loadedDocuments))
	assert.Equal(t, 1, testutil.CollectAndCount(m.retrievalDuration))
}

func TestRAG_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRAG(reg)
	require.NoError(t, err)

	_, err = NewRAG(reg)
	assert.Error(t, err)
}

func TestRAG_NilSafe(t *testing.T) {
	var m *RAG
	assert.NotPanics(t, func() {
		m.ObserveEmbedding(1, nil)
		m.ObserveRetrieval(time.Second)
		m.SetLoadedDocuments(1)
	})
}
