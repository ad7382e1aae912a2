package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoGrant means no live grant exists for the session.
var ErrNoGrant = errors.New("no access grant")

// Store persists access grants. A grant associates an opaque session ID with
// a verified email for a fixed window.
type Store interface {
	// Grant records email under sessionID until now+ttl.
	Grant(ctx context.Context, sessionID, email string, ttl time.Duration) error
	// Check returns the granted email, or ErrNoGrant if absent or expired.
	Check(ctx context.Context, sessionID string) (string, error)
	// Revoke removes the grant immediately. Revoking a missing grant is a no-op.
	Revoke(ctx context.Context, sessionID string) error
}

const grantKeyPrefix = "access:grant:"

// RedisStore keeps grants in Redis with key-level TTL, so expiry needs no
// sweeper and is absolute: the TTL set at grant time is never refreshed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed grant store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Grant implements Store.
func (s *RedisStore) Grant(ctx context.Context, sessionID, email string, ttl time.Duration) error {
	if err := s.client.Set(ctx, grantKeyPrefix+sessionID, email, ttl).Err(); err != nil {
		return fmt.Errorf("set grant: %w", err)
	}
	return nil
}

// Check implements Store.
func (s *RedisStore) Check(ctx context.Context, sessionID string) (string, error) {
	email, err := s.client.Get(ctx, grantKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", ErrNoGrant
	}
	if err != nil {
		return "", fmt.Errorf("get grant: %w", err)
	}
	return email, nil
}

// Revoke implements Store.
func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, grantKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("del grant: %w", err)
	}
	return nil
}

const resendKeyPrefix = "access:resend:"

// AllowResend reports whether a validation email may be sent to email now,
// and if so starts a new cooldown window. The check applies before any
// account lookup so the throttle behaves identically for unknown addresses.
func (s *RedisStore) AllowResend(ctx context.Context, email string, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, resendKeyPrefix+email, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("setnx resend: %w", err)
	}
	return ok, nil
}
