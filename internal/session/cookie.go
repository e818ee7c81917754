package session

import (
	"context"
	"net/http"
	"time"
)

// DefaultCookieName is used when CookieOptions.Name is empty.
const DefaultCookieName = "market.sid"

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Name   string
	Secure bool
}

// WriteCookie sets the signed session cookie on w.
func (m *Manager) WriteCookie(w http.ResponseWriter, s Session) error {
	value, err := m.signer.Sign(s.ID, s.ExpiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the session id carried by a valid signed cookie.
func (m *Manager) FromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := m.signer.Verify(c.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

type ctxKey string

const (
	userIDCtxKey    = ctxKey("userID")
	sessionIDCtxKey = ctxKey("sessionID")
)

// WithPrincipal stores the authenticated user and session id in ctx.
func WithPrincipal(ctx context.Context, sessionID string, userID int64) context.Context {
	ctx = context.WithValue(ctx, sessionIDCtxKey, sessionID)
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDCtxKey).(int64)
	return id, ok
}

// IDFromContext extracts the resolved session id.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDCtxKey).(string)
	return id, ok
}
