// Package session maps opaque session identifiers to authenticated user ids.
//
// Identifiers are random UUIDs held server-side in a Store with a TTL; the
// client only ever sees a signed cookie carrying the identifier.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned for unknown, expired or destroyed sessions.
var ErrNoSession = errors.New("session not found")

// Store persists session bindings. Implementations must make Delete take
// effect for every subsequent Load.
type Store interface {
	Save(ctx context.Context, id string, userID int64, ttl time.Duration) error
	// Load returns ErrNoSession when id is unknown or expired.
	Load(ctx context.Context, id string) (int64, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}

// Session is an established binding.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// Signer turns a session id into a cookie value and back.
type Signer interface {
	Sign(sessionID string, expiresAt time.Time) (string, error)
	Verify(value string) (string, error)
}

// Manager governs the login/logout lifecycle over a Store.
type Manager struct {
	store  Store
	signer Signer
	ttl    time.Duration
	cookie CookieOptions
}

// NewManager creates a manager issuing sessions that live for ttl.
func NewManager(store Store, signer Signer, ttl time.Duration, cookie CookieOptions) *Manager {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Manager{store: store, signer: signer, ttl: ttl, cookie: cookie}
}

// Create binds a fresh identifier to userID.
func (m *Manager) Create(ctx context.Context, userID int64) (Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}
	s := Session{ID: id.String(), UserID: userID, ExpiresAt: time.Now().Add(m.ttl)}
	if err := m.store.Save(ctx, s.ID, userID, m.ttl); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Resolve returns the user bound to id.
func (m *Manager) Resolve(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, ErrNoSession
	}
	return m.store.Load(ctx, id)
}

// Destroy invalidates id immediately.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
