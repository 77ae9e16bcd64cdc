// This file contains the Gemini implementation of the Completer interface.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// geminiCompleter produces completions using the official Gemini SDK.
type geminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini-backed completer.
// Returns nil if apiKey is empty (provider disabled).
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiCompleter{client: client, model: model}, nil
}

// Complete generates a completion for the prompt.
func (c *geminiCompleter) Complete(ctx context.Context, prompt, language string) (*Completion, error) {
	if c == nil {
		return nil, errors.New("gemini completer is nil")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(language), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   1024,
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		slog.WarnContext(ctx, "gemini completion failed",
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, errors.New("empty response from model")
	}

	slog.DebugContext(ctx, "gemini completion ok",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"length", len(text))

	return &Completion{Text: text, Provider: ProviderGemini}, nil
}

// Provider returns the provider type.
func (c *geminiCompleter) Provider() Provider {
	return ProviderGemini
}

// Close releases client resources. The Gemini SDK holds no connection
// state that needs closing.
func (c *geminiCompleter) Close() error {
	return nil
}
