// This file contains the unified OpenAI-compatible implementation of the
// Completer interface. It works with any OpenAI-compatible provider
// (Groq, Cerebras) via custom BaseURL.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiCompleter produces completions using an OpenAI-compatible API.
type openaiCompleter struct {
	client   openai.Client
	model    string
	provider Provider
}

// NewOpenAICompleter creates a completer for an OpenAI-compatible provider.
// Returns nil if apiKey is empty (provider disabled).
func NewOpenAICompleter(provider Provider, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModel
		case ProviderCerebras:
			model = DefaultCerebrasModel
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiCompleter{client: client, model: model, provider: provider}, nil
}

// Complete generates a completion for the prompt.
func (c *openaiCompleter) Complete(ctx context.Context, prompt, language string) (*Completion, error) {
	if c == nil {
		return nil, errors.New("openai completer is nil")
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction(language)),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		slog.WarnContext(ctx, "openai-compatible completion failed",
			"provider", c.provider,
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, errors.New("empty response from model")
	}

	slog.DebugContext(ctx, "openai-compatible completion ok",
		"provider", c.provider,
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds())

	return &Completion{Text: resp.Choices[0].Message.Content, Provider: c.provider}, nil
}

// Provider returns the provider type.
func (c *openaiCompleter) Provider() Provider {
	return c.provider
}

// Close releases client resources.
func (c *openaiCompleter) Close() error {
	return nil
}
