package genai

import (
	"context"
	"fmt"
	"log/slog"
)

// BuildCompleters constructs one completer per configured provider, in the
// order of cfg.Providers. Providers without an API key are skipped with a
// warning rather than failing the whole set.
func BuildCompleters(ctx context.Context, cfg Config) ([]Completer, error) {
	completers := make([]Completer, 0, len(cfg.Providers))

	for _, provider := range cfg.Providers {
		var (
			completer Completer
			err       error
		)

		switch provider {
		case ProviderGemini:
			completer, err = NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		case ProviderGroq:
			completer, err = NewOpenAICompleter(ProviderGroq, cfg.GroqAPIKey, cfg.GroqModel)
		case ProviderCerebras:
			completer, err = NewOpenAICompleter(ProviderCerebras, cfg.CerebrasAPIKey, cfg.CerebrasModel)
		default:
			return nil, fmt.Errorf("unknown provider: %s", provider)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to build %s completer: %w", provider, err)
		}
		if completer == nil {
			slog.Warn("provider skipped, no API key configured", "provider", provider)
			continue
		}

		completers = append(completers, completer)
	}

	return completers, nil
}

// CloseAll closes every completer, logging failures.
func CloseAll(completers []Completer) {
	for _, c := range completers {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close completer", "provider", c.Provider(), "error", err)
		}
	}
}
