// Package metrics holds Prometheus collectors for the retrieval pipeline.
// All methods are safe on a nil *RAG so components can run without metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RAG groups the retrieval pipeline collectors.
type RAG struct {
	embeddingRequests *prometheus.CounterVec
	embeddedTexts     prometheus.Counter
	retrievalDuration prometheus.Histogram
	loadedDocuments   prometheus.Gauge
}

// NewRAG creates the collectors and registers them with reg.
func NewRAG(reg prometheus.Registerer) (*RAG, error) {
	m := &RAG{
		embeddingRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_embedding_requests_total",
				Help: "Embedding API calls by outcome.",
			},
			[]string{"status"},
		),
		embeddedTexts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rag_embedded_texts_total",
			Help: "Texts sent to the embedding API.",
		}),
		retrievalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_retrieval_duration_seconds",
			Help:    "Time to embed a query and rank the loaded chunks.",
			Buckets: prometheus.DefBuckets,
		}),
		loadedDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rag_loaded_documents",
			Help: "Users with a PDF currently held in the in-memory index.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.embeddingRequests,
		m.embeddedTexts,
		m.retrievalDuration,
		m.loadedDocuments,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveEmbedding records one embedding API call of n texts.
func (m *RAG) ObserveEmbedding(n int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.embeddingRequests.WithLabelValues(status).Inc()
	if err == nil {
		m.embeddedTexts.Add(float64(n))
	}
}

// ObserveRetrieval records how long one retrieval took.
func (m *RAG) ObserveRetrieval(d time.Duration) {
	if m == nil {
		return
	}
	m.retrievalDuration.Observe(d.Seconds())
}

// SetLoadedDocuments sets the loaded documents gauge.
func (m *RAG) SetLoadedDocuments(n int) {
	if m == nil {
		return
	}
	m.loadedDocuments.Set(float64(n))
}
