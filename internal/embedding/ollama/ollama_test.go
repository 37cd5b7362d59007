package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochat/internal/domain"
)

func TestEmbed(t *testing.T) {
	var gotReq embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, Model: "nomic-embed-text"})
	assert.Equal(t, "ollama/nomic-embed-text", e.Name())
	assert.Zero(t, e.Dimension())

	vec, err := e.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "nomic-embed-text", gotReq.Model)
	assert.Equal(t, "hello world", gotReq.Prompt)
	assert.Equal(t, 3, e.Dimension())
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL})
	_, err := e.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbedEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL})
	_, err := e.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
}

func TestEmbedUnreachableServer(t *testing.T) {
	e := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := e.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
}

func TestEmbedBatchSequentialAndOrdered(t *testing.T) {
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompts = append(prompts, req.Prompt)
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{float64(len(prompts))}})
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL})
	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, prompts)
	assert.Equal(t, []float64{1}, vecs[0])
	assert.Equal(t, []float64{3}, vecs[2])
}

func TestEmbedBatchAbortsOnFirstFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{1}})
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL})
	_, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.Contains(t, err.Error(), "embed text 1")
	assert.Equal(t, 2, calls)
}

func TestEmbedConcurrentDimensionLearning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := e.Embed(context.Background(), "text")
			assert.NoError(t, err)
			assert.Len(t, vec, 3)
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, e.Dimension())
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL})
	assert.NoError(t, e.Ping(context.Background()))

	down := New(Config{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, down.Ping(context.Background()))
}
