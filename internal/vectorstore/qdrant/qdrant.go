// Package qdrant provides a vector index backed by a Qdrant server over its
// REST API. It is an approximate substitution for the exact memory index:
// Qdrant's HNSW search preserves the cosine ordering contract within its own
// recall tolerance, which is acceptable for interactive use but not used as
// test ground truth.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"dochat/internal/domain"
)

// Index is a minimal REST client to a Qdrant collection using cosine distance.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu  sync.RWMutex
	len int
}

// Config contains connection details for a Qdrant server.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Qdrant-backed index. The collection is (re)created on Build.
func New(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name identifies this backend.
func (ix *Index) Name() string { return "qdrant" }

// Build drops and recreates the collection, then upserts all chunks. Unlike
// the memory index, the remote collection is briefly empty during a rebuild;
// the pipeline serializes Build against searches so callers never observe it.
func (ix *Index) Build(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("qdrant: no chunks to index")
	}
	dimension := len(chunks[0].Vector)
	if dimension == 0 {
		return fmt.Errorf("qdrant: zero-dimension vectors")
	}

	// Best-effort drop; a missing collection is not an error.
	req, _ := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), nil)
	ix.auth(req)
	if resp, err := ix.client.Do(req); err == nil {
		resp.Body.Close()
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := ix.putJSON(ctx, fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), create); err != nil {
		return err
	}

	points := make([]map[string]any, len(chunks))
	for i, ch := range chunks {
		points[i] = map[string]any{
			"id":     i,
			"vector": ch.Vector,
			"payload": map[string]any{
				"chunk_id":     ch.ID,
				"document_id":  ch.DocumentID,
				"page_number":  ch.PageNumber,
				"start_offset": ch.StartOffset,
				"end_offset":   ch.EndOffset,
				"text":         ch.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	if err := ix.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", ix.url, ix.collection), body); err != nil {
		return err
	}
	ix.mu.Lock()
	ix.len = len(chunks)
	ix.mu.Unlock()
	return nil
}

// Search queries the collection for the fetchK nearest chunks.
func (ix *Index) Search(ctx context.Context, vector []float64, fetchK int) ([]domain.ScoredChunk, error) {
	if fetchK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        fetchK,
		"with_payload": true,
		"with_vector":  true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Vector  []float64      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := ix.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", ix.url, ix.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		ch := domain.EmbeddedChunk{Vector: r.Vector}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			ch.ID = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			ch.DocumentID = v
		}
		if v, ok := r.Payload["page_number"].(float64); ok {
			ch.PageNumber = int(v)
		}
		if v, ok := r.Payload["start_offset"].(float64); ok {
			ch.StartOffset = int(v)
		}
		if v, ok := r.Payload["end_offset"].(float64); ok {
			ch.EndOffset = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			ch.Text = v
		}
		results = append(results, domain.ScoredChunk{Chunk: ch, Score: r.Score})
	}
	return results, nil
}

// Len returns the number of chunks in the last successful Build.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.len
}

func (ix *Index) auth(req *http.Request) {
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
}

func (ix *Index) putJSON(ctx context.Context, url string, body any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	ix.auth(req)
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (ix *Index) postJSON(ctx context.Context, url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	ix.auth(req)
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
