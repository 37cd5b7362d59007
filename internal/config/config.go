package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dochat/internal/domain"
)

// RetrievalConfig holds the chunking and retrieval parameters. MMRLambda is a
// pointer because 0 is a meaningful value (pure diversity selection); a nil
// pointer means the key was absent and the default applies.
type RetrievalConfig struct {
	ChunkSize       int      `yaml:"chunk_size"`
	ChunkOverlap    int      `yaml:"chunk_overlap"`
	K               int      `yaml:"retrieval_k"`
	FetchK          int      `yaml:"fetch_k"`
	MMRLambda       *float64 `yaml:"mmr_lambda"`
	SummaryChunkCap int      `yaml:"summary_chunk_cap"`
}

// Lambda returns the MMR trade-off, falling back to the default when unset.
func (r RetrievalConfig) Lambda() float64 {
	if r.MMRLambda == nil {
		return defaultMMRLambda
	}
	return *r.MMRLambda
}

// OllamaEmbedderConfig configures the local Ollama embedding adapter.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIConfig configures an OpenAI-compatible endpoint (embeddings or chat).
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Ollama *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
	OpenAI *OpenAIConfig         `yaml:"openai,omitempty"`
}

// OllamaGeneratorConfig configures the local Ollama generation adapter.
type OllamaGeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// GeneratorConfig selects and configures the answer generator implementation.
type GeneratorConfig struct {
	Type   string                 `yaml:"type"`
	Ollama *OllamaGeneratorConfig `yaml:"ollama,omitempty"`
	OpenAI *OpenAIConfig          `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// LedgerConfig selects where conversation turns are recorded.
type LedgerConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Index     IndexConfig     `yaml:"index"`
	Ledger    LedgerConfig    `yaml:"ledger"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. The result is validated.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./dochat.yaml first, then ~/.config/dochat/config.yaml.
// If neither exists, it writes defaults to ~/.config/dochat/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "dochat.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unusable retrieval parameters before any work begins.
func (c *AppConfig) Validate() error {
	r := c.Retrieval
	if r.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size %d must be positive", domain.ErrInvalidConfiguration, r.ChunkSize)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size)", domain.ErrInvalidConfiguration, r.ChunkOverlap)
	}
	if r.K <= 0 {
		return fmt.Errorf("%w: retrieval_k %d must be positive", domain.ErrInvalidConfiguration, r.K)
	}
	if r.FetchK < r.K {
		return fmt.Errorf("%w: fetch_k %d must be >= retrieval_k %d", domain.ErrInvalidConfiguration, r.FetchK, r.K)
	}
	if lambda := r.Lambda(); lambda < 0 || lambda > 1 {
		return fmt.Errorf("%w: mmr_lambda %v must be in [0, 1]", domain.ErrInvalidConfiguration, lambda)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dochat", "config.yaml"), nil
}

const defaultMMRLambda = 0.5

// Default returns the out-of-the-box configuration: local Ollama inference,
// exact in-memory index, persistent SQLite ledger.
func Default() *AppConfig {
	lambda := defaultMMRLambda
	return &AppConfig{
		Retrieval: RetrievalConfig{
			ChunkSize:       800,
			ChunkOverlap:    200,
			K:               4,
			FetchK:          8,
			MMRLambda:       &lambda,
			SummaryChunkCap: 6,
		},
		Embedder:  EmbedderConfig{Type: "ollama"},
		Generator: GeneratorConfig{Type: "ollama"},
		Index:     IndexConfig{Type: "memory"},
		Ledger:    LedgerConfig{Type: "sqlite"},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = def.Retrieval.ChunkSize
		if cfg.Retrieval.ChunkOverlap == 0 {
			cfg.Retrieval.ChunkOverlap = def.Retrieval.ChunkOverlap
		}
	}
	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = def.Retrieval.K
	}
	if cfg.Retrieval.FetchK == 0 {
		cfg.Retrieval.FetchK = def.Retrieval.FetchK
	}
	// nil means absent; an explicit 0 (pure diversity) is preserved.
	if cfg.Retrieval.MMRLambda == nil {
		cfg.Retrieval.MMRLambda = def.Retrieval.MMRLambda
	}
	if cfg.Retrieval.SummaryChunkCap == 0 {
		cfg.Retrieval.SummaryChunkCap = def.Retrieval.SummaryChunkCap
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = def.Index.Type
	}
	if cfg.Ledger.Type == "" {
		cfg.Ledger.Type = def.Ledger.Type
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Generator.Type == "openai" && cfg.Generator.OpenAI != nil {
		if cfg.Generator.OpenAI.APIKeyEnv == "" {
			cfg.Generator.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Generator.OpenAI.TimeoutSecs == 0 {
			cfg.Generator.OpenAI.TimeoutSecs = 60
		}
	}
}

// LedgerPath resolves the SQLite ledger location, defaulting next to the
// user config.
func (c *AppConfig) LedgerPath() (string, error) {
	if c.Ledger.Path != "" {
		return c.Ledger.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "dochat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
