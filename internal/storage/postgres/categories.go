package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

// CreateCategory inserts a category; duplicate names yield ErrAlreadyExists.
func (s *Store) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	const query = `INSERT INTO categories (name) VALUES ($1) RETURNING id, name`
	var c models.Category
	if err := s.pool.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name); err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, storage.ErrAlreadyExists
		}
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// FindCategory fetches a category by id.
func (s *Store) FindCategory(ctx context.Context, id int64) (models.Category, error) {
	row, err := s.queryRow(ctx, psql.Select("id", "name").From("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return models.Category{}, err
	}
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, storage.ErrNotFound
		}
		return models.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category row.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.exec(ctx, psql.Delete("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListCategories returns categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.query(ctx, psql.Select("id", "name").From("categories").OrderBy("name ASC"))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
