package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

func postColumns(alias string) []string {
	p := alias + "."
	return []string{
		p + "id AS id",
		p + "user_id AS user_id",
		p + "title AS title",
		"COALESCE(" + p + "description, '') AS description",
		p + "price AS price",
		p + "category_id AS category_id",
		"COALESCE(" + p + "condition, '') AS condition",
		"COALESCE(" + p + "location, '') AS location",
		"COALESCE(" + p + "image_url, '') AS image_url",
		"COALESCE(" + p + "contact_info, '') AS contact_info",
		p + "is_active AS is_active",
		p + "created_at AS created_at",
		p + "updated_at AS updated_at",
	}
}

func (s *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	now := s.now()
	b := builder.Insert("posts").
		Columns("user_id", "title", "description", "price", "category_id", "condition",
			"location", "image_url", "contact_info", "is_active", "created_at", "updated_at").
		Values(
			post.UserID,
			post.Title,
			nullIfEmpty(post.Description),
			post.Price,
			post.CategoryID,
			nullIfEmpty(post.Condition),
			nullIfEmpty(post.Location),
			nullIfEmpty(post.ImageURL),
			nullIfEmpty(post.ContactInfo),
			post.IsActive,
			now,
			now,
		)
	query, args, err := b.ToSql()
	if err != nil {
		return models.Post{}, fmt.Errorf("build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	return s.FindPost(ctx, id)
}

func (s *Store) FindPost(ctx context.Context, id int64) (models.Post, error) {
	var p models.Post
	b := builder.Select(postColumns("p")...).From("posts p").Where(sq.Eq{"p.id": id})
	if err := s.get(ctx, &p, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, storage.ErrNotFound
		}
		return models.Post{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (s *Store) UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (models.Post, error) {
	b := builder.Update("posts")
	if patch.Title != nil {
		b = b.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		b = b.Set("description", nullIfEmpty(*patch.Description))
	}
	if patch.Price != nil {
		b = b.Set("price", *patch.Price)
	}
	if patch.CategoryID != nil {
		b = b.Set("category_id", *patch.CategoryID)
	}
	if patch.Condition != nil {
		b = b.Set("condition", nullIfEmpty(*patch.Condition))
	}
	if patch.Location != nil {
		b = b.Set("location", nullIfEmpty(*patch.Location))
	}
	if patch.ImageURL != nil {
		b = b.Set("image_url", nullIfEmpty(*patch.ImageURL))
	}
	if patch.ContactInfo != nil {
		b = b.Set("contact_info", nullIfEmpty(*patch.ContactInfo))
	}
	b = b.Set("updated_at", s.now()).Where(sq.Eq{"id": id})

	if err := s.execAffected(ctx, b); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Post{}, err
		}
		return models.Post{}, fmt.Errorf("update post: %w", err)
	}
	return s.FindPost(ctx, id)
}

func (s *Store) SetPostActive(ctx context.Context, id int64, active bool) (models.Post, error) {
	b := builder.Update("posts").
		Set("is_active", active).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id})
	if err := s.execAffected(ctx, b); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Post{}, err
		}
		return models.Post{}, fmt.Errorf("set post status: %w", err)
	}
	return s.FindPost(ctx, id)
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	err := s.execAffected(ctx, builder.Delete("posts").Where(sq.Eq{"id": id}))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete post: %w", err)
	}
	return err
}

func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	posts := []models.Post{}
	b := builder.Select(postColumns("p")...).From("posts p").
		Where(sq.Eq{"p.user_id": userID}).
		OrderBy("p.created_at DESC", "p.id DESC")
	if err := s.selectAll(ctx, &posts, b); err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	return posts, nil
}

func (s *Store) SearchPosts(ctx context.Context, filter models.PostFilter) ([]models.PostListing, error) {
	cols := append(postColumns("p"),
		"COALESCE(u.username, '') AS username",
		"COALESCE(u.email, '') AS owner_contact",
		"COALESCE(c.name, '') AS category_name",
	)
	b := builder.Select(cols...).
		From("posts p").
		LeftJoin("users u ON p.user_id = u.id").
		LeftJoin("categories c ON p.category_id = c.id").
		OrderBy("p.created_at DESC", "p.id DESC")

	if filter.Query != "" {
		pattern := storage.ContainsPattern(filter.Query)
		b = b.Where(sq.Or{
			sq.Expr(`unicode_lower(COALESCE(p.title, '')) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`unicode_lower(COALESCE(p.description, '')) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`unicode_lower(COALESCE(p.location, '')) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`unicode_lower(COALESCE(p.condition, '')) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	if filter.CategoryName != "" {
		b = b.Where(sq.Expr("unicode_lower(COALESCE(c.name, '')) = ?", strings.ToLower(filter.CategoryName)))
	}

	listings := []models.PostListing{}
	if err := s.selectAll(ctx, &listings, b); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return listings, nil
}
