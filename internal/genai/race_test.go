package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
)

type fakeCompleter struct {
	provider Provider
	text     string
	err      error
	delay    time.Duration
}

func (f *fakeCompleter) Complete(ctx context.Context, _, _ string) (*Completion, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Text: f.text, Provider: f.provider}, nil
}

func (f *fakeCompleter) Provider() Provider { return f.provider }
func (f *fakeCompleter) Close() error       { return nil }

func testRacer(completers ...Completer) *Racer {
	return NewRacer(completers, QualityBar{MaxLength: 2000}, nil, logger.New("error"))
}

func TestRacer_FirstQualifyingWins(t *testing.T) {
	racer := testRacer(
		&fakeCompleter{provider: ProviderGemini, text: "slow but fine", delay: 200 * time.Millisecond},
		&fakeCompleter{provider: ProviderGroq, text: "fast answer", delay: 5 * time.Millisecond},
	)

	completion, err := racer.Complete(context.Background(), "prompt", "en")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completion.Provider != ProviderGroq {
		t.Errorf("winner = %s, want groq", completion.Provider)
	}
}

func TestRacer_SkipsRejectedAnswers(t *testing.T) {
	racer := testRacer(
		&fakeCompleter{provider: ProviderGroq, text: "I cannot help with that.", delay: 5 * time.Millisecond},
		&fakeCompleter{provider: ProviderGemini, text: "Visit the passport office.", delay: 50 * time.Millisecond},
	)

	completion, err := racer.Complete(context.Background(), "prompt", "en")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completion.Provider != ProviderGemini {
		t.Errorf("winner = %s, want gemini after groq rejection", completion.Provider)
	}
}

func TestRacer_SkipsErrors(t *testing.T) {
	racer := testRacer(
		&fakeCompleter{provider: ProviderGroq, err: errors.New("boom"), delay: 5 * time.Millisecond},
		&fakeCompleter{provider: ProviderGemini, text: "still fine", delay: 50 * time.Millisecond},
	)

	completion, err := racer.Complete(context.Background(), "prompt", "en")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completion.Provider != ProviderGemini {
		t.Errorf("winner = %s, want gemini", completion.Provider)
	}
}

func TestRacer_AllFail(t *testing.T) {
	racer := testRacer(
		&fakeCompleter{provider: ProviderGemini, err: errors.New("boom")},
		&fakeCompleter{provider: ProviderGroq, text: "I cannot help with that."},
	)

	_, err := racer.Complete(context.Background(), "prompt", "en")
	if err == nil {
		t.Fatal("Complete() should fail when every provider fails")
	}
	var exhausted *apperrors.FallbackExhausted
	if !errors.As(err, &exhausted) {
		t.Errorf("error = %T, want *FallbackExhausted", err)
	}
	if len(exhausted.Providers) != 2 {
		t.Errorf("Providers = %v, want both listed", exhausted.Providers)
	}
}

func TestRacer_ContextExpiry(t *testing.T) {
	racer := testRacer(
		&fakeCompleter{provider: ProviderGemini, text: "too late", delay: time.Second},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := racer.Complete(ctx, "prompt", "en")
	var exhausted *apperrors.FallbackExhausted
	if !errors.As(err, &exhausted) {
		t.Errorf("error = %T, want *FallbackExhausted on context expiry", err)
	}
}

func TestRacer_NoProviders(t *testing.T) {
	racer := testRacer()

	_, err := racer.Complete(context.Background(), "prompt", "en")
	var exhausted *apperrors.FallbackExhausted
	if !errors.As(err, &exhausted) {
		t.Errorf("error = %T, want *FallbackExhausted with no providers", err)
	}
}
