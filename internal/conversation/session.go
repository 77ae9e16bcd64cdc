package conversation

import (
	"sync"
	"time"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// Session is the in-memory dialogue state of one user.
type Session struct {
	UserID string
	State  State
	// Draft accumulates onboarding answers. It is committed to the
	// profile store once, when onboarding completes; an expired session
	// loses the draft and onboarding starts over.
	Draft *model.UserProfile
	// PendingQuery holds the original low-confidence query while the
	// machine waits for clarification.
	PendingQuery string
	LastSeen     time.Time
}

// SessionStore keeps sessions in memory with an idle TTL. Sessions idle
// longer than the TTL are swept; on the next message the machine resumes
// ACTIVE from the persisted profile, or restarts onboarding.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionStore creates a store sweeping idle sessions every ttl/2.
// Call Stop when done.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

// Get returns the live session for the user, or nil if absent or expired.
func (s *SessionStore) Get(userID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok || time.Since(session.LastSeen) > s.ttl {
		return nil
	}
	return session
}

// Put stores the session and refreshes its idle timer.
func (s *SessionStore) Put(session *Session) {
	session.LastSeen = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
}

// Delete removes the user's session.
func (s *SessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLoop() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			for userID, session := range s.sessions {
				if time.Since(session.LastSeen) > s.ttl {
					delete(s.sessions, userID)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop terminates the sweep loop. Safe to call multiple times.
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
