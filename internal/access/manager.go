package access

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Manager converts a verified email into a time-bounded grant and checks that
// grant on protected operations. It is the single gating authority: nothing
// else in the service decides whether a request is allowed to touch a roster.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager creates a grant manager. ttlDays is absolute (30 days in
// production); grants are not refreshed on use.
func NewManager(store Store, ttlDays int) *Manager {
	return &Manager{
		store: store,
		ttl:   time.Duration(ttlDays) * 24 * time.Hour,
		now:   time.Now,
	}
}

// Grant is a live session: the opaque ID handed to the client plus what it
// proves and until when.
type Grant struct {
	SessionID string    `json:"session_token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Open creates a grant for a verified email and returns it.
func (m *Manager) Open(ctx context.Context, email string) (*Grant, error) {
	sessionID, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	if err := m.store.Grant(ctx, sessionID, email, m.ttl); err != nil {
		return nil, err
	}
	return &Grant{
		SessionID: sessionID,
		Email:     email,
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

// Check returns the verified email for sessionID, or ErrNoGrant. It has no
// side effects and does not extend the grant.
func (m *Manager) Check(ctx context.Context, sessionID string) (string, error) {
	return m.store.Check(ctx, sessionID)
}

// Revoke ends the session immediately (explicit "finish" / logout).
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	return m.store.Revoke(ctx, sessionID)
}

// randomHex returns n bytes of cryptographically secure randomness, hex encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
