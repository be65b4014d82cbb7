package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory, used when no Redis is
// configured and by tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memSession
}

type memSession struct {
	sess      Session
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]memSession{}}
}

// Save stores the session under token for ttl.
func (s *MemoryStore) Save(ctx context.Context, token string, sess Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memSession{sess: sess, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get resolves a token, dropping it lazily once expired.
func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, token)
		return nil, nil
	}
	sess := entry.sess
	return &sess, nil
}

// Delete revokes the token.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
