// Package genai provides integration with LLM APIs (Gemini, Groq, and
// Cerebras) for the generic fallback stage, plus Gemini embeddings for the
// semantic index.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq/Cerebras: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// The fallback stage races all configured providers concurrently and takes
// the first answer that clears the quality bar; see race.go.
package genai

import "context"

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible, ultra-fast inference).
	ProviderCerebras Provider = "cerebras"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Default model per provider, used when no model is configured.
var (
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGroqModel     = "llama-3.3-70b-versatile"
	DefaultCerebrasModel = "llama-3.3-70b"
)

// Completion is one provider's answer.
type Completion struct {
	Text     string
	Provider Provider
}

// Completer produces a free-text completion for a prompt. Implementations
// may fail or time out independently; the race layer composes them.
type Completer interface {
	// Complete generates a completion for the prompt in the given language.
	Complete(ctx context.Context, prompt, language string) (*Completion, error)
	// Provider returns the provider type for metrics and ordering.
	Provider() Provider
	// Close releases any resources held by the completer.
	Close() error
}

// Config holds provider configuration for the fallback stage.
type Config struct {
	// Providers is the ordered preference list; the race prefers earlier
	// providers when several answers qualify.
	Providers []Provider

	GeminiAPIKey   string
	GroqAPIKey     string
	CerebrasAPIKey string

	GeminiModel   string
	GroqModel     string
	CerebrasModel string
}
