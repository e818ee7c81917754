package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

func (s *Store) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, storage.ErrAlreadyExists
		}
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return models.Category{ID: id, Name: name}, nil
}

func (s *Store) FindCategory(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	if err := s.get(ctx, &c, builder.Select("id", "name").From("categories").Where(sq.Eq{"id": id})); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, storage.ErrNotFound
		}
		return models.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	err := s.execAffected(ctx, builder.Delete("categories").Where(sq.Eq{"id": id}))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete category: %w", err)
	}
	return err
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.selectAll(ctx, &categories, builder.Select("id", "name").From("categories").OrderBy("name ASC")); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
