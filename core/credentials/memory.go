package credentials

import (
	"context"
	"sync"
)

// MemoryStore implements Store with in-process storage. Suitable for tests
// and short-lived processes that are expected to re-login on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	sess    Session
	present bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current session snapshot.
func (s *MemoryStore) Get(ctx context.Context) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return Session{}, ErrNoSession
	}
	return s.sess, nil
}

// Set replaces the stored session wholesale.
func (s *MemoryStore) Set(ctx context.Context, sess Session) error {
	if sess.IsZero() {
		return ErrEmptySession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = sess
	s.present = true
	return nil
}

// Clear removes the stored session. Safe to call repeatedly.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = Session{}
	s.present = false
	return nil
}
