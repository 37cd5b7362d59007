// Package memory provides the exact brute-force vector index. It is the
// baseline semantics for search: results are ordered by true cosine
// similarity, and tests treat it as ground truth for any other backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"dochat/internal/domain"
	"dochat/internal/vectorstore"
)

// Index is an in-memory vector index using brute-force cosine similarity.
// Build swaps the contents in a single assignment under the write lock, so
// searches either see the complete old snapshot or the complete new one.
type Index struct {
	mu     sync.RWMutex
	chunks []domain.EmbeddedChunk
}

// New creates an empty index.
func New() *Index { return &Index{} }

// Name identifies this backend.
func (ix *Index) Name() string { return "memory" }

// Build replaces the index contents wholesale with the given chunks.
func (ix *Index) Build(_ context.Context, chunks []domain.EmbeddedChunk) error {
	// Copy so later mutation of the caller's slice cannot reach the snapshot.
	snapshot := make([]domain.EmbeddedChunk, len(chunks))
	copy(snapshot, chunks)
	ix.mu.Lock()
	ix.chunks = snapshot
	ix.mu.Unlock()
	return nil
}

// Search returns the min(fetchK, Len()) chunks closest to the query vector,
// ordered by descending cosine similarity.
func (ix *Index) Search(_ context.Context, vector []float64, fetchK int) ([]domain.ScoredChunk, error) {
	ix.mu.RLock()
	chunks := ix.chunks
	ix.mu.RUnlock()

	if fetchK <= 0 || len(chunks) == 0 {
		return nil, nil
	}
	scored := make([]domain.ScoredChunk, len(chunks))
	for i := range chunks {
		scored[i] = domain.ScoredChunk{
			Chunk: chunks[i],
			Score: vectorstore.Cosine(chunks[i].Vector, vector),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if fetchK > len(scored) {
		fetchK = len(scored)
	}
	return scored[:fetchK], nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}
