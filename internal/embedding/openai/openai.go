// Package openai provides an embedding adapter for OpenAI-compatible
// endpoints via the go-openai SDK. Pointing BaseURL at a local server (e.g.
// Ollama's /v1 or llama.cpp) keeps inference fully local.
package openai

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"dochat/internal/domain"
)

var _ domain.Embedder = (*Embedder)(nil)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = string(openai.SmallEmbedding3)

// Config configures the OpenAI-compatible embeddings client. The API key is
// read from the environment variable named by APIKeyEnv.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// Embedder generates embeddings through the OpenAI embeddings API. The vector
// dimension is learned from the first response and stored atomically because
// queries may embed concurrently.
type Embedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	timeout   time.Duration
	dimension atomic.Int64
}

// New creates an embeddings client from the configuration.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Embedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   openai.EmbeddingModel(cfg.Model),
		timeout: cfg.Timeout,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "openai/" + string(e.model) }

// Dimension returns the vector size, or 0 before the first successful Embed.
func (e *Embedder) Dimension() int { return int(e.dimension.Load()) }

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one API request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrEmbeddingFailure, len(resp.Data), len(texts))
	}
	vectors := make([][]float64, len(texts))
	for _, d := range resp.Data {
		v := make([]float64, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float64(f)
		}
		vectors[d.Index] = v
	}
	if len(vectors) > 0 {
		e.dimension.CompareAndSwap(0, int64(len(vectors[0])))
	}
	return vectors, nil
}
