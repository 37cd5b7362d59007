package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochat/internal/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 800, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 200, cfg.Retrieval.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.K)
	assert.Equal(t, 8, cfg.Retrieval.FetchK)
	assert.InDelta(t, 0.5, cfg.Retrieval.Lambda(), 1e-9)
	assert.Equal(t, 6, cfg.Retrieval.SummaryChunkCap)
	assert.Equal(t, "ollama", cfg.Embedder.Type)
	assert.Equal(t, "ollama", cfg.Generator.Type)
	assert.Equal(t, "memory", cfg.Index.Type)
	assert.Equal(t, "sqlite", cfg.Ledger.Type)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dochat.yaml")
	partial := `retrieval:
  chunk_size: 400
  chunk_overlap: 100
embedder:
  type: tfidf
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 100, cfg.Retrieval.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.K)
	assert.Equal(t, 8, cfg.Retrieval.FetchK)
	assert.InDelta(t, 0.5, cfg.Retrieval.Lambda(), 1e-9)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "ollama", cfg.Generator.Type)
	assert.Equal(t, "sqlite", cfg.Ledger.Type)
}

func TestLoadPreservesExplicitZeroLambda(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dochat.yaml")
	// mmr_lambda 0 is pure diversity selection, not an absent key.
	raw := `retrieval:
  chunk_size: 400
  chunk_overlap: 100
  mmr_lambda: 0
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Retrieval.MMRLambda)
	assert.InDelta(t, 0.0, cfg.Retrieval.Lambda(), 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsInvalidRetrieval(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"overlap >= size", "retrieval:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{"negative overlap", "retrieval:\n  chunk_size: 100\n  chunk_overlap: -5\n"},
		{"negative k", "retrieval:\n  retrieval_k: -3\n"},
		{"fetch_k below k", "retrieval:\n  retrieval_k: 6\n  fetch_k: 3\n"},
		{"lambda out of range", "retrieval:\n  mmr_lambda: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dochat.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "dochat.yaml")

	cfg := Default()
	cfg.Retrieval.ChunkSize = 500
	cfg.Retrieval.ChunkOverlap = 50
	cfg.Embedder = EmbedderConfig{
		Type:   "openai",
		OpenAI: &OpenAIConfig{Model: "text-embedding-3-small"},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, loaded.Retrieval.ChunkSize)
	assert.Equal(t, 50, loaded.Retrieval.ChunkOverlap)
	assert.Equal(t, "openai", loaded.Embedder.Type)
	require.NotNil(t, loaded.Embedder.OpenAI)
	assert.Equal(t, "text-embedding-3-small", loaded.Embedder.OpenAI.Model)
	// The OpenAI adapter defaults are filled in on load.
	assert.Equal(t, "OPENAI_API_KEY", loaded.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, loaded.Embedder.OpenAI.TimeoutSecs)
}

func TestLedgerPathExplicit(t *testing.T) {
	cfg := Default()
	cfg.Ledger.Path = "/tmp/custom.db"
	path, err := cfg.LedgerPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", path)
}
