package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pdfchat/internal/config"
	"pdfchat/internal/metrics"
)

const DefaultBatchSize = 100

// OpenAI implements Embedder and Completer on the OpenAI API.
type OpenAI struct {
	client    openai.Client
	cfg       config.OpenAIConfig
	batchSize int
	pool      *ants.Pool
	metrics   *metrics.RAG
}

// Options tune embedding fan-out. A nil Pool embeds batches sequentially.
type Options struct {
	BatchSize  int
	Pool       *ants.Pool
	Metrics    *metrics.RAG
	HTTPClient *http.Client
}

// NewOpenAI builds a client from cfg. Requests go through an otelhttp transport
// unless opts.HTTPClient is set.
func NewOpenAI(cfg config.OpenAIConfig, opts Options) *OpenAI {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	return &OpenAI{
		client:    openai.NewClient(reqOpts...),
		cfg:       cfg,
		batchSize: batch,
		pool:      opts.Pool,
		metrics:   opts.Metrics,
	}
}

// EmbedText embeds a single string.
func (o *OpenAI) EmbedText(ctx context.Context, text string) ([]float64, error) {
	vecs, err := o.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts embeds texts in batches of at most batchSize, running batches on
// the worker pool. Any failed batch fails the call.
func (o *OpenAI) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var batches [][]string
	for start := 0; start < len(texts); start += o.batchSize {
		batches = append(batches, texts[start:min(start+o.batchSize, len(texts))])
	}

	results := make([][][]float64, len(batches))
	if o.pool == nil || len(batches) == 1 {
		for i, b := range batches {
			vecs, err := o.embedBatch(ctx, b)
			if err != nil {
				return nil, fmt.Errorf("embedding batch %d: %w", i, err)
			}
			results[i] = vecs
		}
		return flatten(results, len(texts)), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, b := range batches {
		wg.Add(1)
		err := o.pool.Submit(func() {
			defer wg.Done()
			vecs, err := o.embedBatch(ctx, b)
			if err != nil {
				fail(fmt.Errorf("embedding batch %d: %w", i, err))
				return
			}
			results[i] = vecs
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit embedding batch %d: %w", i, err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return flatten(results, len(texts)), nil
}

func (o *OpenAI) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
		Model: openai.EmbeddingModel(o.cfg.EmbeddingModel),
	})
	var vecs [][]float64
	if err == nil {
		vecs, err = orderEmbeddings(resp.Data, len(batch))
	}
	o.metrics.ObserveEmbedding(len(batch), err)
	if err != nil {
		return nil, err
	}
	return vecs, nil
}

// orderEmbeddings places each vector at its input position. Every position must
// be filled exactly once with a non-empty vector.
func orderEmbeddings(data []openai.Embedding, n int) ([][]float64, error) {
	if len(data) != n {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(data), n)
	}
	vecs := make([][]float64, n)
	for _, d := range data {
		idx := int(d.Index)
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("embedding index %d out of range [0,%d)", idx, n)
		}
		if vecs[idx] != nil {
			return nil, fmt.Errorf("duplicate embedding index %d", idx)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", idx)
		}
		vecs[idx] = d.Embedding
	}
	return vecs, nil
}

// Complete sends one system and one user message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       openai.ChatModel(o.cfg.ChatModel),
		Temperature: openai.Float(o.cfg.Temperature),
		MaxTokens:   openai.Int(int64(o.cfg.MaxTokens)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func flatten(parts [][][]float64, n int) [][]float64 {
	out := make([][]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
