// Package ollama provides a generation adapter for a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dochat/internal/domain"
)

var _ domain.Generator = (*Generator)(nil)

const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultModel       = "llama3.1:8b-instruct-q5_K_M"
	DefaultTemperature = 0.2
	DefaultTimeout     = 60 * time.Second
)

// Config holds connection and sampling settings for Ollama generation.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Generator produces answers via Ollama's /api/generate endpoint.
type Generator struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates an Ollama generator, filling in defaults for empty fields.
func New(cfg Config) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Generator{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Name returns the identifier of this generator implementation.
func (g *Generator) Name() string { return "ollama/" + g.model }

// Generate produces a completion for the prompt with streaming disabled.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  false,
		Options: &options{Temperature: g.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGenerationFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrGenerationFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama status %d: %s", domain.ErrGenerationFailure, resp.StatusCode, string(msg))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrGenerationFailure, err)
	}
	answer := strings.TrimSpace(out.Response)
	if answer == "" {
		return "", fmt.Errorf("%w: ollama returned an empty completion", domain.ErrGenerationFailure)
	}
	return answer, nil
}
