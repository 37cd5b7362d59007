// Package openai provides a generation adapter for OpenAI-compatible chat
// completion endpoints via the go-openai SDK.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"dochat/internal/domain"
)

var _ domain.Generator = (*Generator)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

// Config configures the chat completion client. The API key is read from the
// environment variable named by APIKeyEnv.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Generator produces answers through the chat completions API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// New creates a chat completion client from the configuration.
func New(cfg Config) (*Generator, error) {
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
		cfg.Timeout = 60 * time.Second
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}, nil
}

// Name returns the identifier of this generator implementation.
func (g *Generator) Name() string { return "openai/" + g.model }

// Generate sends the prompt as a single user message and returns the
// assistant's reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", domain.ErrGenerationFailure)
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGenerationFailure)
	}
	return answer, nil
}
