// Package embedding wraps the external embedding provider behind a small
// client with bounded retry. Transient provider failures are the most
// likely fault in the pipeline, so every call gets up to maxRetries
// attempts with exponential backoff before the error surfaces.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/config"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/helper"
)

const (
	maxRetries = 3
	retryDelay = time.Second
)

type Client struct {
	embedder *embeddings.EmbedderImpl
}

// NewClient creates an embedder against an OpenAI-compatible endpoint
// (OpenAI, OpenRouter and friends).
func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding llm: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Client{embedder: embedder}, nil
}

// NewOllamaClient creates an embedder against a local ollama server.
func NewOllamaClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama llm: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Client{embedder: embedder}, nil
}

// EmbedQuery returns the embedding vector for text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(helper.Backoff(retryDelay, attempt)):
			}
		}
		vec, err := c.embedder.EmbedQuery(ctx, text)
		if err != nil {
			lastErr = err
			continue
		}
		return vec, nil
	}
	return nil, fmt.Errorf("embed after %d attempts: %w", maxRetries+1, lastErr)
}

// CheckDimension embeds a probe string and verifies the provider's vector
// width matches the store's configured width. A mismatch is a fatal
// configuration error, not a per-request one.
func (c *Client) CheckDimension(ctx context.Context, want int) error {
	vec, err := c.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return fmt.Errorf("probe embedding: %w", err)
	}
	if len(vec) != want {
		return fmt.Errorf("embedding dimension mismatch: provider returns %d, store configured for %d", len(vec), want)
	}
	return nil
}
