// This file contains the intent extractor used to classify inbound queries
// into catalog service categories before the resolution cascade runs.
package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/janseva-labs/janseva-bot-go/internal/catalog"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

const (
	// IntentModel is the model used for intent classification. A lite
	// model keeps latency low on every inbound message.
	IntentModel = "gemini-2.5-flash-lite"

	// IntentTimeout caps the classification call.
	IntentTimeout = 10 * time.Second

	// llmIntentConfidence is assigned when the model picks a known
	// category. The model does not return calibrated scores.
	llmIntentConfidence = 0.85
)

// IntentExtractor classifies a query into a catalog service category.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) (model.Intent, error)
}

// KeywordIntentExtractor classifies by catalog keyword matching. It is the
// deterministic fallback when no LLM is configured or the LLM call fails.
type KeywordIntentExtractor struct{}

// Extract classifies the text by keyword hits. Never fails.
func (KeywordIntentExtractor) Extract(_ context.Context, text string) (model.Intent, error) {
	category, confidence := catalog.Classify(text)
	return model.Intent{Category: category, Confidence: confidence}, nil
}

// LLMIntentExtractor classifies via Gemini, falling back to keyword
// matching when the call fails or returns an unknown category.
type LLMIntentExtractor struct {
	client   *genai.Client
	model    string
	fallback KeywordIntentExtractor
}

// NewLLMIntentExtractor creates the Gemini-backed extractor. Returns nil if
// apiKey is empty; callers should then use KeywordIntentExtractor directly.
func NewLLMIntentExtractor(ctx context.Context, apiKey string) (*LLMIntentExtractor, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: extractor disabled when no API key
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &LLMIntentExtractor{client: client, model: IntentModel}, nil
}

// Extract classifies the text. LLM errors degrade to keyword matching
// rather than failing the pipeline.
func (e *LLMIntentExtractor) Extract(ctx context.Context, text string) (model.Intent, error) {
	if e == nil {
		return KeywordIntentExtractor{}.Extract(ctx, text)
	}

	ctx, cancel := context.WithTimeout(ctx, IntentTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		MaxOutputTokens: 32,
	}

	prompt := BuildIntentPrompt(text, catalog.Categories())
	result, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), config)
	if err != nil {
		return e.fallback.Extract(ctx, text)
	}

	category := strings.ToLower(strings.TrimSpace(result.Text()))
	if category == catalog.OtherCategory {
		return model.Intent{Category: catalog.OtherCategory, Confidence: 0}, nil
	}
	if _, ok := catalog.Lookup(category); !ok {
		return e.fallback.Extract(ctx, text)
	}

	return model.Intent{Category: category, Confidence: llmIntentConfidence}, nil
}
