package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charleschow/arcade-hockey/internal/core/state/match"
)

var ErrMatchNotFound = errors.New("match not found")

// SessionStore is a thread-safe map of all hosted matches, keyed by id.
//
// The store's RWMutex protects the map itself (lookups, inserts, deletes).
// It does NOT protect the MatchContext contents; each MatchContext
// serializes its own state mutations through its inbox channel.
type SessionStore struct {
	mu      sync.RWMutex
	matches map[string]*match.MatchContext
}

func New() *SessionStore {
	return &SessionStore{
		matches: make(map[string]*match.MatchContext),
	}
}

func (s *SessionStore) Get(id string) (*match.MatchContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mc, ok := s.matches[id]
	return mc, ok
}

// Lookup is Get with an error for handlers.
func (s *SessionStore) Lookup(id string) (*match.MatchContext, error) {
	mc, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return mc, nil
}

func (s *SessionStore) Put(mc *match.MatchContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[mc.ID] = mc
}

// PutIfUnder inserts mc only while fewer than limit matches are hosted and
// reports whether it did. A limit <= 0 means no limit.
func (s *SessionStore) PutIfUnder(mc *match.MatchContext, limit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > 0 && len(s.matches) >= limit {
		return false
	}
	s.matches[mc.ID] = mc
	return true
}

// Delete removes a match from the store and shuts down its goroutine.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	mc, ok := s.matches[id]
	delete(s.matches, id)
	s.mu.Unlock()

	if ok {
		mc.Close()
	}
}

// All returns a snapshot of all matches. Safe for iteration.
func (s *SessionStore) All() []*match.MatchContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*match.MatchContext, 0, len(s.matches))
	for _, mc := range s.matches {
		out = append(out, mc)
	}
	return out
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Sweep deletes matches that went final before cutoff and returns how
// many were removed.
func (s *SessionStore) Sweep(cutoff time.Time) int {
	var stale []string
	for _, mc := range s.All() {
		if mc.Finished() && mc.FinishedAt().Before(cutoff) {
			stale = append(stale, mc.ID)
		}
	}
	for _, id := range stale {
		s.Delete(id)
	}
	return len(stale)
}

// CloseAll shuts down every match.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	all := s.matches
	s.matches = make(map[string]*match.MatchContext)
	s.mu.Unlock()

	for _, mc := range all {
		mc.Close()
	}
}
