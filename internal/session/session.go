// Package session holds the single source of truth for "who is logged in".
// The principal is replaced wholesale on every change; there is no partial
// field update, so a stale role can never pair with a fresh token.
package session

import (
	"sync"
)

// Principal is the authenticated identity plus its role and bearer credential.
type Principal struct {
	Identity string
	Role     Role
	Token    string
}

// Store is the process-wide session holder. All reads see either the
// previous principal or the new one, never a mix.
type Store struct {
	mu      sync.RWMutex
	current *Principal
	epoch   uint64
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the entire principal. The role is normalized through
// ParseRole so an unknown backend role degrades to Staff instead of
// leaking an out-of-set value into authorization checks.
func (s *Store) Set(p Principal) {
	if !p.Role.Valid() {
		p.Role = ParseRole(string(p.Role))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.current = &cp
	s.epoch++
}

// Clear removes the principal. Subsequent authorization checks treat the
// caller as unauthenticated. In-flight requests are not cancelled; their
// late responses are discarded by the epoch guard.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.epoch++
}

// Current returns a copy of the active principal, if any.
func (s *Store) Current() (Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Principal{}, false
	}
	return *s.current, true
}

// Epoch is a monotonic counter bumped on every Set and Clear. Orchestrators
// capture it before issuing a request and drop the response if it moved,
// so a result issued under an old session is never applied to a new one.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Token implements the transport token source. The token is read, never
// mutated, by every in-flight request.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Token == "" {
		return "", false
	}
	return s.current.Token, true
}
