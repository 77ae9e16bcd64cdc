package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// Prompt identifies a localized reply the transport should render.
type Prompt string

const (
	PromptWelcome        Prompt = "welcome"
	PromptAskName        Prompt = "ask_name"
	PromptAskAddress     Prompt = "ask_address"
	PromptAskCity        Prompt = "ask_city"
	PromptAskState       Prompt = "ask_state"
	PromptAskLanguage    Prompt = "ask_language"
	PromptOnboardingDone Prompt = "onboarding_done"
	PromptClarify        Prompt = "clarify"
	PromptProfileUpdated Prompt = "profile_updated"
)

// Result is the machine's decision for one inbound message. Exactly one of
// Prompt or Resolve is set: a prompt is rendered directly, a resolve hands
// the text to the resolution pipeline.
type Result struct {
	Prompt  Prompt
	Resolve bool
	// Text is the query to resolve. For a clarified query this is the
	// pending query combined with the clarification.
	Text string
	// Profile is the user's current profile, valid when Resolve is set or
	// the prompt needs the profile language.
	Profile model.UserProfile
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	PutProfile(ctx context.Context, profile *model.UserProfile) error
}

// Machine is the conversation state machine. Safe for concurrent use
// across users; per-user serialization is the caller's job via Guard.
type Machine struct {
	profiles ProfileStore
	sessions *SessionStore
	log      *logger.Logger
}

// NewMachine creates the state machine.
func NewMachine(profiles ProfileStore, sessions *SessionStore, log *logger.Logger) *Machine {
	return &Machine{
		profiles: profiles,
		sessions: sessions,
		log:      log.WithModule("conversation"),
	}
}

// Advance processes one inbound message and returns the machine's decision.
func (m *Machine) Advance(ctx context.Context, userID, platform, text string) (*Result, error) {
	text = strings.TrimSpace(text)

	session, profile, err := m.load(ctx, userID, platform)
	if err != nil {
		return nil, err
	}

	log := m.log.WithUser(userID).WithField("state", session.State)

	switch session.State {
	case StateNew:
		m.move(session, StateAwaitingName)
		log.Info("onboarding started")
		return &Result{Prompt: PromptWelcome, Profile: *profile}, nil

	case StateAwaitingName, StateAwaitingAddress, StateAwaitingCity, StateAwaitingState, StateAwaitingLanguage:
		return m.advanceOnboarding(ctx, session, profile, text)

	case StateAwaitingClarification:
		combined := strings.TrimSpace(session.PendingQuery + " " + text)
		session.PendingQuery = ""
		m.move(session, StateActive)
		return &Result{Resolve: true, Text: combined, Profile: *profile}, nil

	case StateActive:
		if text == "" {
			// Re-follow or empty message; re-greet instead of resolving
			// an empty query.
			return &Result{Prompt: PromptOnboardingDone, Profile: *profile}, nil
		}
		if result, handled, err := m.handleProfileUpdate(ctx, profile, text); handled {
			return result, err
		}
		m.sessions.Put(session)
		return &Result{Resolve: true, Text: text, Profile: *profile}, nil

	default:
		return nil, fmt.Errorf("unknown conversation state: %s", session.State)
	}
}

// RequestClarification parks the query and asks the user for detail. Called
// by the resolution layer when intent confidence is too low.
func (m *Machine) RequestClarification(ctx context.Context, userID, query string) (*Result, error) {
	session := m.sessions.Get(userID)
	if session == nil || session.State != StateActive {
		return nil, fmt.Errorf("clarification requested outside ACTIVE for user")
	}

	profile, err := m.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.PendingQuery = query
	m.move(session, StateAwaitingClarification)
	return &Result{Prompt: PromptClarify, Profile: *profile}, nil
}

// PreferredLanguage returns the user's chosen language when one is known,
// empty otherwise. Notices sent before Advance runs use it so they are
// translated like every other reply.
func (m *Machine) PreferredLanguage(ctx context.Context, userID string) string {
	if session := m.sessions.Get(userID); session != nil && session.Draft != nil {
		return session.Draft.Language
	}
	profile, err := m.profiles.GetProfile(ctx, userID)
	if err != nil {
		return ""
	}
	return profile.Language
}

// load finds or rebuilds the user's session. Dialogue state derives from
// the profile store: a completed profile resumes ACTIVE, anything else
// starts onboarding with a fresh draft held on the session.
func (m *Machine) load(ctx context.Context, userID, platform string) (*Session, *model.UserProfile, error) {
	if session := m.sessions.Get(userID); session != nil {
		if session.Draft != nil {
			return session, session.Draft, nil
		}
		profile, err := m.profiles.GetProfile(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("load profile: %w", err)
		}
		return session, profile, nil
	}

	profile, err := m.profiles.GetProfile(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		profile = nil
		err = nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}

	if profile != nil && profile.OnboardingComplete {
		session := &Session{UserID: userID, State: StateActive}
		m.sessions.Put(session)
		return session, profile, nil
	}

	draft := &model.UserProfile{UserID: userID, Platform: platform}
	session := &Session{UserID: userID, State: StateNew, Draft: draft}
	m.sessions.Put(session)
	return session, draft, nil
}

// advanceOnboarding consumes one onboarding answer into the session draft.
// Invalid input re-prompts the same step. The draft is committed to the
// profile store once, when the final step completes.
func (m *Machine) advanceOnboarding(ctx context.Context, session *Session, profile *model.UserProfile, text string) (*Result, error) {
	if text == "" {
		return &Result{Prompt: promptForState(session.State), Profile: *profile}, nil
	}

	switch session.State {
	case StateAwaitingName:
		profile.Name = text
		m.move(session, StateAwaitingAddress)
	case StateAwaitingAddress:
		profile.Address = text
		m.move(session, StateAwaitingCity)
	case StateAwaitingCity:
		profile.City = text
		m.move(session, StateAwaitingState)
	case StateAwaitingState:
		profile.State = text
		m.move(session, StateAwaitingLanguage)
	case StateAwaitingLanguage:
		lang, ok := parseLanguage(text)
		if !ok {
			return &Result{Prompt: PromptAskLanguage, Profile: *profile}, nil
		}
		profile.Language = lang
		profile.OnboardingComplete = true

		if err := m.profiles.PutProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("commit onboarded profile: %w", err)
		}
		session.Draft = nil
		m.move(session, StateActive)
		m.log.WithUser(session.UserID).Info("onboarding complete")
		return &Result{Prompt: PromptOnboardingDone, Profile: *profile}, nil
	}

	return &Result{Prompt: promptForState(session.State), Profile: *profile}, nil
}

// updateFields maps profile-update commands to setters.
var updateFields = map[string]func(*model.UserProfile, string) bool{
	"name":    func(p *model.UserProfile, v string) bool { p.Name = v; return true },
	"address": func(p *model.UserProfile, v string) bool { p.Address = v; return true },
	"city":    func(p *model.UserProfile, v string) bool { p.City = v; return true },
	"state":   func(p *model.UserProfile, v string) bool { p.State = v; return true },
	"language": func(p *model.UserProfile, v string) bool {
		lang, ok := parseLanguage(v)
		if ok {
			p.Language = lang
		}
		return ok
	},
}

// handleProfileUpdate recognizes "update <field> <value>" commands from
// ACTIVE users. handled is false for anything else.
func (m *Machine) handleProfileUpdate(ctx context.Context, profile *model.UserProfile, text string) (*Result, bool, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 || !strings.EqualFold(fields[0], "update") {
		return nil, false, nil
	}

	setter, ok := updateFields[strings.ToLower(fields[1])]
	if !ok {
		return nil, false, nil
	}

	value := strings.Join(fields[2:], " ")
	if !setter(profile, value) {
		return &Result{Prompt: PromptAskLanguage, Profile: *profile}, true, nil
	}

	if err := m.profiles.PutProfile(ctx, profile); err != nil {
		return nil, true, fmt.Errorf("persist profile update: %w", err)
	}

	m.log.WithUser(profile.UserID).WithField("field", strings.ToLower(fields[1])).Info("profile updated")
	return &Result{Prompt: PromptProfileUpdated, Profile: *profile}, true, nil
}

func (m *Machine) move(session *Session, to State) {
	if !CanTransition(session.State, to) {
		m.log.WithUser(session.UserID).
			WithField("from", session.State).
			WithField("to", to).
			Error("illegal state transition")
	}
	session.State = to
	m.sessions.Put(session)
}

func promptForState(state State) Prompt {
	switch state {
	case StateAwaitingName:
		return PromptAskName
	case StateAwaitingAddress:
		return PromptAskAddress
	case StateAwaitingCity:
		return PromptAskCity
	case StateAwaitingState:
		return PromptAskState
	case StateAwaitingLanguage:
		return PromptAskLanguage
	default:
		return PromptWelcome
	}
}

// parseLanguage accepts BCP 47 tags and language names in the supported
// set (English, Hindi, Marathi).
func parseLanguage(text string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "en", "english", "1":
		return "en", true
	case "hi", "hindi", "हिंदी", "हिन्दी", "2":
		return "hi", true
	case "mr", "marathi", "मराठी", "3":
		return "mr", true
	default:
		return "", false
	}
}
