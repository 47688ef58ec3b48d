package service

import (
	"sync"

	"github.com/google/uuid"
)

// SessionGuard tracks which application sessions already ran the weekly
// warm-up. Each session claims at most one run per ISO week; re-entrant
// triggers from the same session are suppressed, never queued, while
// concurrent sessions each get their own claim. The ledger resets when the
// week label changes, so the first bootstrap of a new week always goes
// through even in a long-lived process.
type SessionGuard struct {
	mu      sync.Mutex
	week    string
	claimed map[uuid.UUID]struct{}
}

func NewSessionGuard() *SessionGuard {
	return &SessionGuard{claimed: make(map[uuid.UUID]struct{})}
}

// TryBegin claims the session's single run for the given week. It returns
// false if the session already ran during that week.
func (g *SessionGuard) TryBegin(sessionID uuid.UUID, weekLabel string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if weekLabel != g.week {
		g.week = weekLabel
		g.claimed = make(map[uuid.UUID]struct{}, len(g.claimed))
	}
	if _, ok := g.claimed[sessionID]; ok {
		return false
	}
	g.claimed[sessionID] = struct{}{}
	return true
}

// HasRun reports whether the session already claimed its run for the week.
func (g *SessionGuard) HasRun(sessionID uuid.UUID, weekLabel string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if weekLabel != g.week {
		return false
	}
	_, ok := g.claimed[sessionID]
	return ok
}
