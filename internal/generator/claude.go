package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// CompletionClient produces raw idea text from a prompt. Transport,
// retries and rate limits are the implementation's concern, not the
// core's.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClaudeClient generates idea text with the Anthropic API.
type ClaudeClient struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewClaudeClient creates a Claude-backed completion client.
func NewClaudeClient(apiKey, model string, logger *slog.Logger) *ClaudeClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeClient{
		client: &client,
		model:  model,
		logger: logger,
	}
}

func (c *ClaudeClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		System: []anthropic.TextBlockParam{
			{Text: "You are a focused idea generator. Output only the idea text, no preamble."},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from Claude")
	}

	c.logger.Debug("claude completion", "chars", len(text))
	return text, nil
}
