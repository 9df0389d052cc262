package redis

// Package redis provides the Redis-backed browser session store.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/carecircle/internal/data/cryptoutil"
	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "session:"

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix string
	Now    func() time.Time
	// Sealer encrypts session values at rest; nil stores plain JSON.
	Sealer cryptoutil.Sealer
}

// SessionStore keeps sessions as JSON values whose Redis TTL tracks ExpiresAt.
// Sessions carry identity service tokens, so values never leave the server.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
	sealer cryptoutil.Sealer
}

// NewSessionStore creates a Redis session store with the default prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithOptions(client, SessionStoreOptions{})
}

// NewSessionStoreWithOptions creates a Redis session store.
func NewSessionStoreWithOptions(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sealer := opts.Sealer
	if sealer == nil {
		sealer = cryptoutil.Plaintext{}
	}
	return &SessionStore{client: client, prefix: prefix, now: now, sealer: sealer}
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// Save writes sess with a TTL equal to its remaining lifetime.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.ExpiresAt.IsZero() {
		return errors.New("session expiry is required")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	sealed, err := s.sealer.Seal(data)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), sealed, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get loads a session. Missing and expired sessions both return ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ErrNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	// sealed under another key, or written before a key was configured
	plain, err := s.sealer.Open(data)
	if err != nil {
		if delErr := s.Delete(ctx, id); delErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup unreadable session: %w", delErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	var sess domainauth.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// key TTL and ExpiresAt can drift by the clock skew between app and Redis
	if sess.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// ErrNotFound is returned when a session is not found.
type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}
