package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.UserProfile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: make(map[string]model.UserProfile)}
}

func (m *memProfiles) GetProfile(_ context.Context, userID string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) PutProfile(_ context.Context, profile *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = *profile
	return nil
}

func testMachine(t *testing.T) (*Machine, *memProfiles) {
	t.Helper()
	profiles := newMemProfiles()
	sessions := NewSessionStore(time.Hour)
	t.Cleanup(sessions.Stop)
	return NewMachine(profiles, sessions, logger.New("error")), profiles
}

func advance(t *testing.T, m *Machine, userID, text string) *Result {
	t.Helper()
	result, err := m.Advance(context.Background(), userID, "line", text)
	if err != nil {
		t.Fatalf("Advance(%q) error = %v", text, err)
	}
	return result
}

func TestMachine_FullOnboarding(t *testing.T) {
	m, profiles := testMachine(t)

	steps := []struct {
		text       string
		wantPrompt Prompt
	}{
		{"hello", PromptWelcome},
		{"Asha Patil", PromptAskAddress},
		{"12 MG Road", PromptAskCity},
		{"Pune", PromptAskState},
		{"Maharashtra", PromptAskLanguage},
		{"marathi", PromptOnboardingDone},
	}

	for _, step := range steps {
		result := advance(t, m, "u1", step.text)
		if result.Prompt != step.wantPrompt {
			t.Fatalf("Advance(%q) prompt = %s, want %s", step.text, result.Prompt, step.wantPrompt)
		}
		if result.Resolve {
			t.Fatalf("Advance(%q) should not resolve during onboarding", step.text)
		}
		if step.wantPrompt != PromptOnboardingDone {
			if _, err := profiles.GetProfile(context.Background(), "u1"); err == nil {
				t.Fatalf("Advance(%q) wrote to the profile store before onboarding completed", step.text)
			}
		}
	}

	stored, err := profiles.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if !stored.OnboardingComplete || stored.Language != "mr" || stored.Name != "Asha Patil" {
		t.Errorf("stored profile = %+v", stored)
	}
}

func TestMachine_ActiveResolves(t *testing.T) {
	m, profiles := testMachine(t)
	_ = profiles.PutProfile(context.Background(), &model.UserProfile{
		UserID: "u1", Name: "Asha", Address: "12 MG Road", City: "Pune",
		State: "Maharashtra", Language: "en", OnboardingComplete: true,
	})

	result := advance(t, m, "u1", "where do I renew my passport")
	if !result.Resolve {
		t.Fatal("ACTIVE user message should resolve")
	}
	if result.Text != "where do I renew my passport" {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Profile.City != "Pune" {
		t.Errorf("Profile.City = %q", result.Profile.City)
	}
}

func TestMachine_ExpiredSessionRestartsOnboarding(t *testing.T) {
	profiles := newMemProfiles()
	sessions := NewSessionStore(30 * time.Millisecond)
	t.Cleanup(sessions.Stop)
	m := NewMachine(profiles, sessions, logger.New("error"))

	advance(t, m, "u1", "hello")      // NEW -> AWAITING_NAME
	advance(t, m, "u1", "Asha Patil") // draft holds the name

	time.Sleep(50 * time.Millisecond) // session idles out, draft is lost

	result := advance(t, m, "u1", "hi again")
	if result.Prompt != PromptWelcome {
		t.Errorf("prompt = %s, want welcome (onboarding restarts from scratch)", result.Prompt)
	}
	if _, err := profiles.GetProfile(context.Background(), "u1"); err == nil {
		t.Error("abandoned onboarding draft must not reach the profile store")
	}
}

func TestMachine_InvalidLanguageReprompts(t *testing.T) {
	m, profiles := testMachine(t)

	for _, text := range []string{"hello", "Asha Patil", "12 MG Road", "Pune", "Maharashtra"} {
		advance(t, m, "u1", text)
	}

	result := advance(t, m, "u1", "klingon")
	if result.Prompt != PromptAskLanguage {
		t.Errorf("prompt = %s, want re-prompt for language", result.Prompt)
	}
	if _, err := profiles.GetProfile(context.Background(), "u1"); err == nil {
		t.Error("invalid language must not complete onboarding")
	}

	done := advance(t, m, "u1", "hindi")
	if done.Prompt != PromptOnboardingDone {
		t.Fatalf("prompt = %s, want onboarding_done after valid language", done.Prompt)
	}
	stored, err := profiles.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if stored.Language != "hi" || !stored.OnboardingComplete {
		t.Errorf("stored profile = %+v", stored)
	}
}

func TestMachine_BlankInputReprompts(t *testing.T) {
	m, _ := testMachine(t)

	advance(t, m, "u1", "hi") // NEW -> AWAITING_NAME
	result := advance(t, m, "u1", "   ")
	if result.Prompt != PromptAskName {
		t.Errorf("prompt = %s, want ask_name again on blank input", result.Prompt)
	}
}

func TestMachine_Clarification(t *testing.T) {
	m, profiles := testMachine(t)
	_ = profiles.PutProfile(context.Background(), &model.UserProfile{
		UserID: "u1", Name: "Asha", Address: "12 MG Road", City: "Pune",
		State: "Maharashtra", Language: "en", OnboardingComplete: true,
	})

	advance(t, m, "u1", "certificate") // enters ACTIVE session

	result, err := m.RequestClarification(context.Background(), "u1", "certificate")
	if err != nil {
		t.Fatalf("RequestClarification() error = %v", err)
	}
	if result.Prompt != PromptClarify {
		t.Errorf("prompt = %s, want clarify", result.Prompt)
	}

	followup := advance(t, m, "u1", "birth certificate for my son")
	if !followup.Resolve {
		t.Fatal("clarified message should resolve")
	}
	if followup.Text != "certificate birth certificate for my son" {
		t.Errorf("combined text = %q", followup.Text)
	}
}

func TestMachine_ProfileUpdate(t *testing.T) {
	m, profiles := testMachine(t)
	_ = profiles.PutProfile(context.Background(), &model.UserProfile{
		UserID: "u1", Name: "Asha", Address: "12 MG Road", City: "Pune",
		State: "Maharashtra", Language: "en", OnboardingComplete: true,
	})

	result := advance(t, m, "u1", "update city Mumbai")
	if result.Prompt != PromptProfileUpdated {
		t.Fatalf("prompt = %s, want profile_updated", result.Prompt)
	}

	stored, _ := profiles.GetProfile(context.Background(), "u1")
	if stored.City != "Mumbai" {
		t.Errorf("City = %q, want Mumbai", stored.City)
	}
	if !stored.OnboardingComplete {
		t.Error("update must not reset onboarding")
	}
}

func TestMachine_UpdateLanguageInvalid(t *testing.T) {
	m, profiles := testMachine(t)
	_ = profiles.PutProfile(context.Background(), &model.UserProfile{
		UserID: "u1", Name: "Asha", Address: "12 MG Road", City: "Pune",
		State: "Maharashtra", Language: "en", OnboardingComplete: true,
	})

	result := advance(t, m, "u1", "update language klingon")
	if result.Prompt != PromptAskLanguage {
		t.Errorf("prompt = %s, want ask_language on unsupported language", result.Prompt)
	}

	stored, _ := profiles.GetProfile(context.Background(), "u1")
	if stored.Language != "en" {
		t.Errorf("Language = %q, want unchanged en", stored.Language)
	}
}

func TestMachine_PreferredLanguage(t *testing.T) {
	m, profiles := testMachine(t)

	if lang := m.PreferredLanguage(context.Background(), "u1"); lang != "" {
		t.Errorf("language for unknown user = %q, want empty", lang)
	}

	_ = profiles.PutProfile(context.Background(), &model.UserProfile{
		UserID: "u1", Name: "Asha", Address: "12 MG Road", City: "Pune",
		State: "Maharashtra", Language: "hi", OnboardingComplete: true,
	})
	if lang := m.PreferredLanguage(context.Background(), "u1"); lang != "hi" {
		t.Errorf("language = %q, want hi", lang)
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StateNew, StateAwaitingName) {
		t.Error("NEW -> AWAITING_NAME should be allowed")
	}
	if CanTransition(StateAwaitingName, StateActive) {
		t.Error("skipping onboarding steps should not be allowed")
	}
	if !CanTransition(StateAwaitingClarification, StateActive) {
		t.Error("clarification must return to ACTIVE")
	}
}

func TestGuard(t *testing.T) {
	g := NewGuard()

	if !g.TryAcquire("u1") {
		t.Fatal("first acquire should succeed")
	}
	if g.TryAcquire("u1") {
		t.Error("second acquire for same user should fail")
	}
	if !g.TryAcquire("u2") {
		t.Error("other users should be unaffected")
	}

	g.Release("u1")
	if !g.TryAcquire("u1") {
		t.Error("acquire after release should succeed")
	}
}

func TestGuard_AcquireQueues(t *testing.T) {
	g := NewGuard()
	if err := g.Acquire(context.Background(), "u1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		if err := g.Acquire(context.Background(), "u1"); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should wait for the first to release")
	case <-time.After(30 * time.Millisecond):
	}

	g.Release("u1")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("queued acquire should proceed after release")
	}
}

func TestGuard_AcquireCanceled(t *testing.T) {
	g := NewGuard()
	if err := g.Acquire(context.Background(), "u1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.Acquire(ctx, "u1"); err == nil {
		t.Error("acquire should fail when the context ends first")
	}
}

func TestSessionStore_TTL(t *testing.T) {
	s := NewSessionStore(30 * time.Millisecond)
	defer s.Stop()

	s.Put(&Session{UserID: "u1", State: StateActive})
	if s.Get("u1") == nil {
		t.Fatal("fresh session should be found")
	}

	time.Sleep(50 * time.Millisecond)
	if s.Get("u1") != nil {
		t.Error("idle session past TTL should be gone")
	}
}
