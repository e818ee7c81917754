// Package category manages the fixed vocabulary posts are filed under.
package category

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/apperr"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

const (
	MsgNameRequired = "Category name is required"
	MsgExists       = "Category already exists"
	MsgNotFound     = "Category not found"
)

// Service owns category invariants.
type Service struct {
	store storage.CategoryStore
	log   *zap.Logger
}

func NewService(store storage.CategoryStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log.Named("category")}
}

// Create adds a category with a unique, trimmed name.
func (s *Service) Create(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, apperr.Validation(MsgNameRequired)
	}
	c, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Category{}, apperr.Conflict(MsgExists)
		}
		return models.Category{}, s.internal("create category", err)
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (models.Category, error) {
	c, err := s.store.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Category{}, apperr.NotFound(MsgNotFound)
		}
		return models.Category{}, s.internal("find category", err)
	}
	return c, nil
}

// Delete removes a category. Posts filed under it keep the stale id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(MsgNotFound)
		}
		return s.internal("delete category", err)
	}
	s.log.Info("category deleted", zap.Int64("category_id", id))
	return nil
}

// ListAll returns every category ordered by name.
func (s *Service) ListAll(ctx context.Context) ([]models.Category, error) {
	cs, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, s.internal("list categories", err)
	}
	return cs, nil
}

func (s *Service) internal(op string, err error) error {
	s.log.Error(op+" failed", zap.Error(err))
	return apperr.Internal(err)
}
