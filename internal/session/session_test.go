package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campus-market/internal/auth"
)

func newTestManager(store Store) *Manager {
	return NewManager(store, auth.NewTokenManager("test-secret", "test"), time.Hour, CookieOptions{})
}

func TestCreateResolveDestroy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(NewMemoryStore())

	s, err := m.Create(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, s.ID, 36)
	assert.Equal(t, int64(7), s.UserID)

	userID, err := m.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	require.NoError(t, m.Destroy(ctx, s.ID))
	_, err = m.Resolve(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, m.Destroy(ctx, s.ID), "destroying twice is harmless")
	_, err = m.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionsAreDistinctPerLogin(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(NewMemoryStore())

	a, err := m.Create(ctx, 1)
	require.NoError(t, err)
	b, err := m.Create(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, m.Destroy(ctx, a.ID))
	userID, err := m.Resolve(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "old", 1, time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := store.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(ctx, "a", 1, time.Minute))
	require.NoError(t, store.Save(ctx, "b", 2, time.Minute))
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, "c", 3, time.Minute))
	assert.Equal(t, 1, store.Len(), "expired entries are swept on save")
}

type failingStore struct{ MemoryStore }

func (*failingStore) Save(context.Context, string, int64, time.Duration) error {
	return errors.New("store down")
}

func TestCreatePropagatesStoreFailure(t *testing.T) {
	m := newTestManager(&failingStore{})
	_, err := m.Create(context.Background(), 1)
	assert.Error(t, err)
}

func TestCookieRoundTrip(t *testing.T) {
	m := newTestManager(NewMemoryStore())
	s, err := m.Create(context.Background(), 9)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.WriteCookie(rec, s))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEqual(t, s.ID, cookies[0].Value, "cookie carries a signed token, not the raw id")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	id, ok := m.FromRequest(req)
	require.True(t, ok)
	assert.Equal(t, s.ID, id)

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: s.ID})
	_, ok = m.FromRequest(tampered)
	assert.False(t, ok)

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestPrincipalContext(t *testing.T) {
	ctx := WithPrincipal(context.Background(), "sid", 5)
	userID, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(5), userID)
	sid, ok := IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "sid", sid)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)
}
