package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/janseva-labs/janseva-bot-go/internal/conversation"
	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/i18n"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
	"github.com/janseva-labs/janseva-bot-go/internal/ratelimit"
)

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.UserProfile
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

type fakeResolver struct {
	rec       *model.ServiceRecommendation
	err       error
	block     chan struct{} // when set, Resolve blocks until closed
	started   chan struct{} // closed when Resolve first begins
	startOnce sync.Once
}

func (f *fakeResolver) Resolve(_ context.Context, _ model.ServiceQuery, _ model.UserProfile) (*model.ServiceRecommendation, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	return f.rec, f.err
}

func activeProfile() model.UserProfile {
	return model.UserProfile{
		UserID: "u1", Platform: "line", Name: "Asha", Address: "12 MG Road",
		City: "Pune", State: "Maharashtra", Language: "en", OnboardingComplete: true,
	}
}

func testProcessor(t *testing.T, resolver Resolver, profile *model.UserProfile) *Processor {
	t.Helper()

	profiles := &memProfiles{profiles: make(map[string]model.UserProfile)}
	if profile != nil {
		profiles.profiles[profile.UserID] = *profile
	}
	sessions := conversation.NewSessionStore(time.Hour)
	t.Cleanup(sessions.Stop)

	log := logger.New("error")
	return New(Config{
		Machine:  conversation.NewMachine(profiles, sessions, log),
		Guard:    conversation.NewGuard(),
		Resolver: resolver,
		Logger:   log,
	})
}

func TestHandleText_NewUserOnboards(t *testing.T) {
	p := testProcessor(t, &fakeResolver{}, nil)

	messages := p.HandleText(context.Background(), "u1", "line", "hello", model.Capabilities{})
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	if messages[0].Text != i18n.T("en", i18n.KeyWelcome) {
		t.Errorf("text = %q, want welcome prompt", messages[0].Text)
	}
}

func TestHandleText_Resolves(t *testing.T) {
	profile := activeProfile()
	resolver := &fakeResolver{rec: &model.ServiceRecommendation{
		ServiceType: "passport",
		Provenance:  model.ProvenanceLive,
		Offices: []model.CandidateOffice{
			{Name: "PSK Pune", Address: "Mundhwa Road", SourceKind: model.SourceLive},
		},
	}}
	p := testProcessor(t, resolver, &profile)

	messages := p.HandleText(context.Background(), "u1", "line", "where can I renew my passport", model.Capabilities{})
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want main + office", len(messages))
	}
	if !strings.Contains(messages[1].Text, "PSK Pune") {
		t.Errorf("office message = %q", messages[1].Text)
	}
}

func TestHandleText_LowConfidenceAsksClarification(t *testing.T) {
	profile := activeProfile()
	p := testProcessor(t, &fakeResolver{}, &profile)

	messages := p.HandleText(context.Background(), "u1", "line", "help me with this thing", model.Capabilities{})
	if len(messages) != 1 || messages[0].Text != i18n.T("en", i18n.KeyClarify) {
		t.Fatalf("messages = %+v, want clarification prompt", messages)
	}

	// The clarified follow-up resolves with the combined text.
	resolver := &fakeResolver{err: apperrors.ErrResolutionExhausted}
	p.resolver = resolver
	followup := p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	if followup[0].Text != i18n.T("en", i18n.KeyApology) {
		t.Errorf("followup = %q, want apology after exhaustion", followup[0].Text)
	}
}

func TestHandleText_ExhaustionApologizes(t *testing.T) {
	profile := activeProfile()
	p := testProcessor(t, &fakeResolver{err: apperrors.ErrResolutionExhausted}, &profile)

	messages := p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	if len(messages) != 1 || messages[0].Text != i18n.T("en", i18n.KeyApology) {
		t.Errorf("messages = %+v, want apology", messages)
	}
}

func TestHandleText_SecondMessageQueuesBehindFirst(t *testing.T) {
	profile := activeProfile()
	resolver := &fakeResolver{
		rec:     &model.ServiceRecommendation{ServiceType: "passport", Provenance: model.ProvenanceGeneric, Notes: "n"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	p := testProcessor(t, resolver, &profile)

	first := make(chan []model.OutgoingMessage, 1)
	go func() {
		first <- p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	}()

	<-resolver.started
	second := make(chan []model.OutgoingMessage, 1)
	go func() {
		second <- p.HandleText(context.Background(), "u1", "line", "renew my driving licence", model.Capabilities{})
	}()

	// The second message waits behind the in-flight resolution.
	select {
	case msgs := <-second:
		t.Fatalf("second message answered while first in flight: %+v", msgs)
	case <-time.After(50 * time.Millisecond):
	}

	close(resolver.block)
	for _, ch := range []chan []model.OutgoingMessage{first, second} {
		select {
		case msgs := <-ch:
			if len(msgs) == 0 || msgs[0].Text == i18n.T("en", i18n.KeyBusy) {
				t.Errorf("queued message should resolve normally, got %+v", msgs)
			}
		case <-time.After(time.Second):
			t.Fatal("message did not complete after resolution unblocked")
		}
	}
}

func TestHandleText_QueueWaitCanceled(t *testing.T) {
	profile := activeProfile()
	resolver := &fakeResolver{
		rec:     &model.ServiceRecommendation{ServiceType: "passport", Provenance: model.ProvenanceGeneric, Notes: "n"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	p := testProcessor(t, resolver, &profile)

	done := make(chan []model.OutgoingMessage, 1)
	go func() {
		done <- p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	}()
	<-resolver.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	busy := p.HandleText(ctx, "u1", "line", "renew my driving licence", model.Capabilities{})
	if len(busy) != 1 || busy[0].Text != i18n.T("en", i18n.KeyBusy) {
		t.Errorf("canceled wait = %+v, want busy notice", busy)
	}

	close(resolver.block)
	<-done
}

func TestHandleText_NoticesFollowProfileLanguage(t *testing.T) {
	profile := activeProfile()
	profile.Language = "hi"
	resolver := &fakeResolver{
		rec:     &model.ServiceRecommendation{ServiceType: "passport", Provenance: model.ProvenanceGeneric, Notes: "n"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	p := testProcessor(t, resolver, &profile)

	done := make(chan []model.OutgoingMessage, 1)
	go func() {
		done <- p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	}()
	<-resolver.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	busy := p.HandleText(ctx, "u1", "line", "renew my driving licence", model.Capabilities{})
	if len(busy) != 1 || busy[0].Text != i18n.T("hi", i18n.KeyBusy) {
		t.Errorf("busy notice = %+v, want the Hindi translation", busy)
	}

	close(resolver.block)
	<-done
}

func TestHandleText_RateLimitNoticeLocalized(t *testing.T) {
	profile := activeProfile()
	profile.Language = "mr"
	resolver := &fakeResolver{rec: &model.ServiceRecommendation{ServiceType: "passport", Provenance: model.ProvenanceGeneric, Notes: "n"}}
	p := testProcessor(t, resolver, &profile)
	p.limiter = ratelimit.NewPerKeyLimiter(ratelimit.PerKeyConfig{
		MaxTokens: 1, RefillRate: 0.001, CleanupPeriod: time.Minute,
	})
	t.Cleanup(p.limiter.Stop)

	_ = p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})

	second := p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	if len(second) != 1 || second[0].Text != i18n.T("mr", i18n.KeyRateLimited) {
		t.Errorf("notice = %+v, want the Marathi translation", second)
	}
}

func TestHandleText_RateLimited(t *testing.T) {
	profile := activeProfile()
	p := testProcessor(t, &fakeResolver{err: errors.New("should not be reached")}, &profile)
	p.limiter = ratelimit.NewPerKeyLimiter(ratelimit.PerKeyConfig{
		MaxTokens: 1, RefillRate: 0.001, CleanupPeriod: time.Minute,
	})
	t.Cleanup(p.limiter.Stop)

	first := p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	if first[0].Text == i18n.T("en", i18n.KeyRateLimited) {
		t.Fatal("first message should pass the limiter")
	}

	second := p.HandleText(context.Background(), "u1", "line", "renew my passport", model.Capabilities{})
	if second[0].Text != i18n.T("en", i18n.KeyRateLimited) {
		t.Errorf("second message = %q, want rate limited notice", second[0].Text)
	}
}

func TestHandleFollow(t *testing.T) {
	p := testProcessor(t, &fakeResolver{}, nil)

	messages := p.HandleFollow(context.Background(), "u1", "line")
	if len(messages) != 1 || messages[0].Text != i18n.T("en", i18n.KeyWelcome) {
		t.Errorf("messages = %+v, want welcome", messages)
	}
}

func TestHandleFollow_ReturningUser(t *testing.T) {
	profile := activeProfile()
	p := testProcessor(t, &fakeResolver{}, &profile)

	messages := p.HandleFollow(context.Background(), "u1", "line")
	if len(messages) != 1 || messages[0].Text != i18n.T("en", i18n.KeyOnboardingDone) {
		t.Errorf("messages = %+v, want re-greet", messages)
	}
}
