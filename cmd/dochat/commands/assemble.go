package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"dochat/internal/chunker"
	"dochat/internal/config"
	"dochat/internal/domain"
	embollama "dochat/internal/embedding/ollama"
	embopenai "dochat/internal/embedding/openai"
	"dochat/internal/embedding/tfidf"
	genollama "dochat/internal/generation/ollama"
	genopenai "dochat/internal/generation/openai"
	"dochat/internal/ledger"
	ledgersqlite "dochat/internal/ledger/sqlite"
	"dochat/internal/pipeline"
	"dochat/internal/vectorstore/memory"
	"dochat/internal/vectorstore/qdrant"
)

// assemble builds the retrieval pipeline from configuration. The returned
// closer releases the ledger database handle, if any.
func assemble(cfg *config.AppConfig, logger *log.Logger) (*pipeline.Pipeline, func() error, error) {
	ck, err := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		return nil, nil, err
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "ollama", "":
		ocfg := embollama.Config{}
		if c := cfg.Embedder.Ollama; c != nil {
			ocfg = embollama.Config{
				BaseURL: c.BaseURL,
				Model:   c.Model,
				Timeout: time.Duration(c.TimeoutSecs) * time.Second,
			}
		}
		emb = embollama.New(ocfg)
	case "openai":
		c := cfg.Embedder.OpenAI
		if c == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := embopenai.New(embopenai.Config{
			BaseURL:   c.BaseURL,
			APIKeyEnv: c.APIKeyEnv,
			Model:     c.Model,
			Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		emb = client
	case "tfidf":
		emb = tfidf.New()
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var gen domain.Generator
	switch cfg.Generator.Type {
	case "ollama", "":
		gcfg := genollama.Config{}
		if c := cfg.Generator.Ollama; c != nil {
			gcfg = genollama.Config{
				BaseURL:     c.BaseURL,
				Model:       c.Model,
				Temperature: c.Temperature,
				Timeout:     time.Duration(c.TimeoutSecs) * time.Second,
			}
		}
		gen = genollama.New(gcfg)
	case "openai":
		c := cfg.Generator.OpenAI
		if c == nil {
			return nil, nil, fmt.Errorf("openai generator config missing")
		}
		client, err := genopenai.New(genopenai.Config{
			BaseURL:   c.BaseURL,
			APIKeyEnv: c.APIKeyEnv,
			Model:     c.Model,
			Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai generator init failed: %w", err)
		}
		gen = client
	default:
		return nil, nil, fmt.Errorf("unknown generator: %s", cfg.Generator.Type)
	}

	var index domain.VectorIndex
	switch cfg.Index.Type {
	case "memory", "":
		index = memory.New()
	case "qdrant":
		c := cfg.Index.Qdrant
		if c == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		index = qdrant.New(qdrant.Config{
			URL:        c.URL,
			APIKey:     c.APIKey,
			Collection: c.Collection,
			Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
		})
	default:
		return nil, nil, fmt.Errorf("unknown index: %s", cfg.Index.Type)
	}

	var led domain.Ledger
	closer := func() error { return nil }
	switch cfg.Ledger.Type {
	case "memory":
		led = ledger.NewMemory()
	case "sqlite", "":
		path, err := cfg.LedgerPath()
		if err != nil {
			return nil, nil, err
		}
		db, err := ledgersqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		led = db
		closer = db.Close
	default:
		return nil, nil, fmt.Errorf("unknown ledger: %s", cfg.Ledger.Type)
	}

	p, err := pipeline.New(ck, emb, gen, index, led, pipeline.Options{
		K:               cfg.Retrieval.K,
		FetchK:          cfg.Retrieval.FetchK,
		Lambda:          cfg.Retrieval.Lambda(),
		SummaryChunkCap: cfg.Retrieval.SummaryChunkCap,
	}, logger)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return p, closer, nil
}
