// Package llmservice wraps the text-generation provider.
package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/config"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/helper"
)

const (
	maxRetries = 3
	retryDelay = time.Second
)

type Client struct {
	llm *openai.LLM
}

func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init inference llm: %w", err)
	}
	return &Client{llm: llm}, nil
}

// Complete generates an answer from a system instruction and a user
// prompt. Decoding is deterministic (temperature 0); when the provider
// yields no content the empty string is returned.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: user}},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(helper.Backoff(retryDelay, attempt)):
			}
		}
		res, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(0))
		if err != nil {
			lastErr = err
			continue
		}
		if len(res.Choices) == 0 {
			return "", nil
		}
		return res.Choices[0].Content, nil
	}
	return "", fmt.Errorf("completion after %d attempts: %w", maxRetries+1, lastErr)
}
