// Package bot coordinates one inbound message end to end: rate limiting,
// the conversation state machine, intent extraction, the resolution
// pipeline, and response assembly. The transport layer stays protocol-only.
package bot

import (
	"context"

	"github.com/janseva-labs/janseva-bot-go/internal/assemble"
	"github.com/janseva-labs/janseva-bot-go/internal/conversation"
	"github.com/janseva-labs/janseva-bot-go/internal/ctxutil"
	"github.com/janseva-labs/janseva-bot-go/internal/genai"
	"github.com/janseva-labs/janseva-bot-go/internal/i18n"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/metrics"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
	"github.com/janseva-labs/janseva-bot-go/internal/pipeline"
	"github.com/janseva-labs/janseva-bot-go/internal/ratelimit"
)

// DefaultClarifyThreshold is the intent confidence below which the bot asks
// for clarification instead of resolving.
const DefaultClarifyThreshold = 0.3

// Resolver runs the resolution cascade.
type Resolver interface {
	Resolve(ctx context.Context, query model.ServiceQuery, profile model.UserProfile) (*model.ServiceRecommendation, error)
}

var _ Resolver = (*pipeline.Pipeline)(nil)

// Processor handles inbound messages. One instance serves all users.
type Processor struct {
	machine          *conversation.Machine
	guard            *conversation.Guard
	limiter          *ratelimit.PerKeyLimiter
	intents          genai.IntentExtractor
	resolver         Resolver
	metrics          *metrics.Metrics
	log              *logger.Logger
	clarifyThreshold float64
}

// Config holds the processor's collaborators.
type Config struct {
	Machine  *conversation.Machine
	Guard    *conversation.Guard
	Limiter  *ratelimit.PerKeyLimiter
	Intents  genai.IntentExtractor
	Resolver Resolver
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
	// ClarifyThreshold overrides DefaultClarifyThreshold when > 0.
	ClarifyThreshold float64
}

// New creates the processor.
func New(cfg Config) *Processor {
	threshold := cfg.ClarifyThreshold
	if threshold <= 0 {
		threshold = DefaultClarifyThreshold
	}
	if cfg.Intents == nil {
		cfg.Intents = genai.KeywordIntentExtractor{}
	}

	return &Processor{
		machine:          cfg.Machine,
		guard:            cfg.Guard,
		limiter:          cfg.Limiter,
		intents:          cfg.Intents,
		resolver:         cfg.Resolver,
		metrics:          cfg.Metrics,
		log:              cfg.Logger.WithModule("bot"),
		clarifyThreshold: threshold,
	}
}

// HandleText processes one text message and returns the ordered outgoing
// messages. It never returns an error; failures become localized notices.
func (p *Processor) HandleText(ctx context.Context, userID, platform, text string, caps model.Capabilities) []model.OutgoingMessage {
	log := p.log.WithUser(userID)

	// Notices sent before the machine advances still follow the language
	// the user picked during onboarding, when one is known.
	if p.limiter != nil && !p.limiter.Allow(userID) {
		log.Warn("message dropped by rate limiter")
		return single(i18n.T(p.machine.PreferredLanguage(ctx, userID), i18n.KeyRateLimited))
	}

	// At most one resolution in flight per user. A second message waits
	// behind the first so the state machine never advances on a stale
	// profile draft.
	if err := p.guard.Acquire(ctx, userID); err != nil {
		log.WithError(err).Info("gave up waiting for in-flight resolution")
		// ctx is already done here; the language lookup still has to run.
		return single(i18n.T(p.machine.PreferredLanguage(ctxutil.Detach(ctx), userID), i18n.KeyBusy))
	}
	defer p.guard.Release(userID)

	result, err := p.machine.Advance(ctx, userID, platform, text)
	if err != nil {
		log.WithError(err).Error("conversation advance failed")
		return single(i18n.T(p.machine.PreferredLanguage(ctx, userID), i18n.KeyApology))
	}

	lang := result.Profile.Language

	if result.Prompt != "" {
		return single(i18n.T(lang, string(result.Prompt)))
	}
	if !result.Resolve {
		return nil
	}

	intent, err := p.intents.Extract(ctx, result.Text)
	if err != nil {
		log.WithError(err).Warn("intent extraction failed")
		intent = model.Intent{}
	}

	if intent.Confidence < p.clarifyThreshold {
		clarify, err := p.machine.RequestClarification(ctx, userID, result.Text)
		if err != nil {
			log.WithError(err).Warn("clarification request failed")
			return single(i18n.T(lang, i18n.KeyClarify))
		}
		return single(i18n.T(lang, string(clarify.Prompt)))
	}

	query := model.ServiceQuery{
		Text:     result.Text,
		Language: lang,
		Intent:   intent,
	}

	rec, err := p.resolver.Resolve(ctx, query, result.Profile)
	if err != nil {
		log.WithError(err).Warn("resolution exhausted")
		return single(i18n.T(lang, i18n.KeyApology))
	}

	return assemble.Assemble(rec, lang, caps)
}

// HandleFollow greets a user who just added or re-added the bot.
func (p *Processor) HandleFollow(ctx context.Context, userID, platform string) []model.OutgoingMessage {
	result, err := p.machine.Advance(ctx, userID, platform, "")
	if err != nil {
		p.log.WithUser(userID).WithError(err).Error("follow handling failed")
		return single(i18n.T("en", i18n.KeyApology))
	}
	if result.Prompt == "" {
		return single(i18n.T(result.Profile.Language, i18n.KeyWelcome))
	}
	return single(i18n.T(result.Profile.Language, string(result.Prompt)))
}

func single(text string) []model.OutgoingMessage {
	return []model.OutgoingMessage{{Text: text}}
}
