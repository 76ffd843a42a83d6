// Package redis provides Redis-based adapters for the portal.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartbin/portal/internal/cryptoutil"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

// DefaultSessionTTL bounds how long an idle web session survives.
const DefaultSessionTTL = 24 * time.Hour

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is a Redis-based session store for production use.
// Records are keyed by the session id carried on the request context and
// expire after the configured TTL; every Save refreshes the expiry.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	sealer cryptoutil.Sealer
}

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithSealer encrypts records before they reach Redis.
func WithSealer(s cryptoutil.Sealer) Option {
	return func(st *SessionStore) { st.sealer = s }
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient, ttl time.Duration, opts ...Option) *SessionStore {
	return NewSessionStoreWithPrefix(client, "session:", ttl, opts...)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration, opts ...Option) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	id, ok := domainauth.SessionIDFromContext(ctx)
	if !ok {
		return domainauth.ErrNoSessionID
	}

	data, err := cryptoutil.SealJSON(s.sealer, sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (domainauth.Session, error) {
	id, ok := domainauth.SessionIDFromContext(ctx)
	if !ok {
		return domainauth.Session{}, domainauth.ErrNoSession
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, domainauth.ErrNoSession
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := cryptoutil.OpenJSON(s.sealer, []byte(data), &sess); unmarshalErr != nil {
		// A corrupt record is unusable; drop it so the user can log in again.
		if delErr := s.client.Del(ctx, s.prefix+id).Err(); delErr != nil {
			return domainauth.Session{}, errors.Join(fmt.Errorf("unmarshal session: %w", unmarshalErr), delErr)
		}
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}
	return sess, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	id, ok := domainauth.SessionIDFromContext(ctx)
	if !ok {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
