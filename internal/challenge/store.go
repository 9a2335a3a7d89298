// Package challenge holds in-flight ceremony challenges. Challenges are
// process-local: a restart invalidates every in-flight ceremony, which
// is acceptable because the client simply starts a new one.
package challenge

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Store maps an identity key (username during registration, credential
// id during login, the challenge itself during discoverable login) to
// an outstanding challenge. Entries carry an expiry so an abandoned
// ceremony cannot linger; Get drops expired entries lazily and Sweep
// clears the rest on a schedule.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates a Store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set records the outstanding challenge for key, replacing any
// previous one.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Get returns the pending challenge for key. An expired entry is
// removed and reported as absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

// Delete removes the challenge for key. Deleting an absent key is a
// no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
