package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/apperr"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
	"github.com/hongminglow/campus-market/internal/storage/sqlite"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, zap.NewNop())
}

func TestCreateAndList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	books, err := svc.Create(ctx, "  Books ")
	require.NoError(t, err)
	assert.Equal(t, "Books", books.Name)
	_, err = svc.Create(ctx, "Appliances")
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Appliances", all[0].Name)
	assert.Equal(t, "Books", all[1].Name)

	got, err := svc.GetByID(ctx, books.ID)
	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestCreateRejectsBlankAndDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, MsgNameRequired, apperr.Message(err))

	_, err = svc.Create(ctx, "Books")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Books")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, MsgExists, apperr.Message(err))
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "Vehicles")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, c.ID))

	err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, MsgNotFound, apperr.Message(err))

	_, err = svc.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

type brokenStore struct{ storage.CategoryStore }

func (brokenStore) ListCategories(context.Context) ([]models.Category, error) {
	return nil, errors.New("disk I/O error")
}

func TestListFailureIsInternal(t *testing.T) {
	svc := NewService(brokenStore{}, zap.NewNop())
	_, err := svc.ListAll(context.Background())
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
