// Package session provides ports.SessionStore implementations that need no
// external infrastructure.
package session

import (
	"context"
	"sync"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

var (
	_ ports.SessionStore = (*MemoryStore)(nil)
	_ ports.SessionStore = (*KeyedMemoryStore)(nil)
	_ ports.SessionStore = (*FileStore)(nil)
)

// MemoryStore holds a single process-wide session record.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *domainauth.Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(ctx context.Context) (domainauth.Session, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	return *s.sess, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess domainauth.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sess
	s.sess = &cp
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

// KeyedMemoryStore holds one record per session id, read from the context
// via domainauth.WithSessionID. It backs the web surface when Redis is not
// configured.
type KeyedMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewKeyedMemoryStore returns an empty KeyedMemoryStore.
func NewKeyedMemoryStore() *KeyedMemoryStore {
	return &KeyedMemoryStore{sessions: make(map[string]domainauth.Session)}
}

func (s *KeyedMemoryStore) Load(ctx context.Context) (domainauth.Session, error) {
	id, ok := domainauth.SessionIDFromContext(ctx)
	if !ok {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, found := s.sessions[id]
	if !found {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	return sess, nil
}

func (s *KeyedMemoryStore) Save(ctx context.Context, sess domainauth.Session) error {
	id, ok := domainauth.SessionIDFromContext(ctx)
	if !ok {
		return domainauth.ErrNoSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return nil
}

func (s *KeyedMemoryStore) Clear(ctx context.Context) error {
	id, ok := domainauth.SessionIDFromContext(ctx)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored records.
func (s *KeyedMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
