package genai

import (
	"context"
	"errors"
	"sort"
	"time"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/metrics"
)

// Racer fans a prompt out to all configured providers concurrently and
// returns the first answer that clears the quality bar. When several answers
// arrive together, the provider listed earlier in the configuration wins.
// Losing providers are cancelled.
type Racer struct {
	completers []Completer
	quality    QualityBar
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewRacer creates a racer over the given completers. The completer order is
// the preference order.
func NewRacer(completers []Completer, quality QualityBar, m *metrics.Metrics, log *logger.Logger) *Racer {
	return &Racer{
		completers: completers,
		quality:    quality,
		metrics:    m,
		log:        log.WithModule("genai.race"),
	}
}

type raceResult struct {
	index      int
	completion *Completion
	err        error
}

// Complete races all providers on the prompt. It returns the first
// qualifying completion, or a FallbackExhausted error when every provider
// fails, is rejected by the quality bar, or the context expires first.
func (r *Racer) Complete(ctx context.Context, prompt, language string) (*Completion, error) {
	if r == nil || len(r.completers) == 0 {
		return nil, &apperrors.FallbackExhausted{Err: errors.New("no providers configured")}
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResult, len(r.completers))
	for i, completer := range r.completers {
		go func(index int, c Completer) {
			start := time.Now()
			completion, err := c.Complete(raceCtx, prompt, language)
			if err == nil {
				r.log.WithField("provider", c.Provider()).
					WithField("duration_ms", time.Since(start).Milliseconds()).
					Debug("provider answered")
			}
			results <- raceResult{index: index, completion: completion, err: err}
		}(i, completer)
	}

	providers := make([]Provider, 0, len(r.completers))
	for _, c := range r.completers {
		providers = append(providers, c.Provider())
	}

	var lastErr error
	pending := len(r.completers)
	for pending > 0 {
		select {
		case <-ctx.Done():
			return nil, &apperrors.FallbackExhausted{Providers: providerNames(providers), Err: ctx.Err()}
		case result := <-results:
			pending--
			qualified := r.collect(result, &lastErr, &pending, results)
			if len(qualified) == 0 {
				continue
			}

			// Earlier config position wins when answers arrive together.
			sort.Slice(qualified, func(i, j int) bool { return qualified[i].index < qualified[j].index })
			winner := qualified[0]

			cancel()
			r.metrics.RecordProviderRace(winner.completion.Provider.String(), "won")
			for _, q := range qualified[1:] {
				r.metrics.RecordProviderRace(q.completion.Provider.String(), "lost")
			}
			r.log.WithField("provider", winner.completion.Provider).Info("fallback race won")
			return winner.completion, nil
		}
	}

	return nil, &apperrors.FallbackExhausted{Providers: providerNames(providers), Err: lastErr}
}

// collect records the received result and drains any results already
// buffered, so simultaneous arrivals compete on config order rather than
// channel order. It returns the qualifying completions found.
func (r *Racer) collect(first raceResult, lastErr *error, pending *int, results chan raceResult) []raceResult {
	batch := []raceResult{first}
	for {
		select {
		case extra := <-results:
			*pending--
			batch = append(batch, extra)
		default:
			return r.qualify(batch, lastErr)
		}
	}
}

func (r *Racer) qualify(batch []raceResult, lastErr *error) []raceResult {
	var qualified []raceResult
	for _, result := range batch {
		provider := r.completers[result.index].Provider()
		switch {
		case result.err != nil:
			if !errors.Is(result.err, context.Canceled) {
				r.metrics.RecordProviderRace(provider.String(), "error")
				r.log.WithField("provider", provider).WithError(result.err).Warn("provider failed")
				*lastErr = result.err
			}
		case !r.quality.Accept(result.completion.Text):
			r.metrics.RecordProviderRace(provider.String(), "rejected")
			r.log.WithField("provider", provider).Warn("answer rejected by quality bar")
		default:
			qualified = append(qualified, result)
		}
	}
	return qualified
}

func providerNames(providers []Provider) []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.String())
	}
	return names
}
