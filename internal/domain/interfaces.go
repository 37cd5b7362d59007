package domain

import (
	"context"
	"io"
)

// Embedder converts free text into a fixed-dimension numeric vector.
// Implementations must be deterministic for identical input.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// CorpusPreparer is an optional extension of Embedder for implementations
// that derive their vector space from the ingested corpus (e.g. TF-IDF).
// The pipeline calls Prepare with all chunk texts before embedding.
type CorpusPreparer interface {
	Prepare(corpus []string) error
}

// Generator turns a fully built prompt into natural-language text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits a document into retrieval chunks with page provenance.
type Chunker interface {
	Chunk(doc Document) ([]Chunk, error)
}

// VectorIndex stores chunk vectors and supports nearest-neighbor search by
// cosine similarity. Build replaces the contents wholesale; searches running
// concurrently with a Build complete against the old contents and never
// observe a partially built index.
type VectorIndex interface {
	Name() string
	Build(ctx context.Context, chunks []EmbeddedChunk) error
	Search(ctx context.Context, vector []float64, fetchK int) ([]ScoredChunk, error)
	Len() int
}

// Ledger is the append-only conversation record for one session.
type Ledger interface {
	Append(turn Turn) error
	Turns() ([]Turn, error)
	Reset() error
	Export(w io.Writer) error
}
