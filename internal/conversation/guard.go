package conversation

import (
	"context"
	"sync"
)

// Guard serializes message handling per user: at most one resolution runs
// for a user at a time, and a second message waits behind the first rather
// than interleaving with it.
type Guard struct {
	mu    sync.Mutex
	users map[string]chan struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{users: make(map[string]chan struct{})}
}

// Acquire takes the user's slot, waiting behind any resolution already in
// flight. Returns the context error if it ends first.
func (g *Guard) Acquire(ctx context.Context, userID string) error {
	ch := g.slot(userID)
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes the user's slot only if it is free.
func (g *Guard) TryAcquire(userID string) bool {
	select {
	case g.slot(userID) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the user's slot. Safe to call when not held.
func (g *Guard) Release(userID string) {
	select {
	case <-g.slot(userID):
	default:
	}
}

// InFlight reports whether the user currently has a resolution running.
func (g *Guard) InFlight(userID string) bool {
	return len(g.slot(userID)) > 0
}

// slot returns the user's capacity-one semaphore. Slots are never removed:
// a waiter may hold a reference, and replacing the channel under it would
// let two resolutions run at once.
func (g *Guard) slot(userID string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.users[userID]
	if !ok {
		ch = make(chan struct{}, 1)
		g.users[userID] = ch
	}
	return ch
}
