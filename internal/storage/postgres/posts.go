package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

var postColumns = []string{
	"id", "user_id", "title", "COALESCE(description, '')", "price", "category_id",
	"COALESCE(condition, '')", "COALESCE(location, '')", "COALESCE(image_url, '')",
	"COALESCE(contact_info, '')", "is_active", "created_at", "updated_at",
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if strings.HasPrefix(c, "COALESCE(") {
			out[i] = "COALESCE(" + alias + "." + strings.TrimPrefix(c, "COALESCE(")
			continue
		}
		out[i] = alias + "." + c
	}
	return out
}

// CreatePost inserts a listing and returns the stored row.
func (s *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	b := psql.Insert("posts").
		Columns("user_id", "title", "description", "price", "category_id", "condition", "location", "image_url", "contact_info", "is_active").
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
		).
		Suffix("RETURNING " + joinColumns(postColumns))
	row, err := s.queryRow(ctx, b)
	if err != nil {
		return models.Post{}, err
	}
	created, err := scanPost(row)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// FindPost fetches a listing by id.
func (s *Store) FindPost(ctx context.Context, id int64) (models.Post, error) {
	row, err := s.queryRow(ctx, psql.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}))
	if err != nil {
		return models.Post{}, err
	}
	return scanPost(row)
}

// UpdatePost applies a partial update.
func (s *Store) UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (models.Post, error) {
	b := psql.Update("posts")
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
	b = b.Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(postColumns))

	row, err := s.queryRow(ctx, b)
	if err != nil {
		return models.Post{}, err
	}
	return scanPost(row)
}

// SetPostActive flips the availability flag.
func (s *Store) SetPostActive(ctx context.Context, id int64, active bool) (models.Post, error) {
	b := psql.Update("posts").
		Set("is_active", active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(postColumns))
	row, err := s.queryRow(ctx, b)
	if err != nil {
		return models.Post{}, err
	}
	return scanPost(row)
}

// DeletePost removes a listing.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tag, err := s.exec(ctx, psql.Delete("posts").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPostsByUser returns a user's listings, newest first.
func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	b := psql.Select(postColumns...).From("posts").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SearchPosts matches the filter query against title, description, location
// and condition, joined with owner and category details.
func (s *Store) SearchPosts(ctx context.Context, filter models.PostFilter) ([]models.PostListing, error) {
	cols := append(prefixed("p", postColumns),
		"COALESCE(u.username, '')",
		"COALESCE(u.email, '')",
		"COALESCE(c.name, '')",
	)
	b := psql.Select(cols...).
		From("posts p").
		LeftJoin("users u ON p.user_id = u.id").
		LeftJoin("categories c ON p.category_id = c.id").
		OrderBy("p.created_at DESC", "p.id DESC")

	if filter.Query != "" {
		pattern := storage.ContainsPattern(filter.Query)
		b = b.Where(sq.Or{
			sq.Expr(foldedLike("p.title"), pattern),
			sq.Expr(foldedLike("p.description"), pattern),
			sq.Expr(foldedLike("p.location"), pattern),
			sq.Expr(foldedLike("p.condition"), pattern),
		})
	}
	if filter.CategoryName != "" {
		b = b.Where(sq.Expr(`LOWER(c.name COLLATE "und-x-icu") = ?`, strings.ToLower(filter.CategoryName)))
	}

	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	listings := []models.PostListing{}
	for rows.Next() {
		var l models.PostListing
		p := &l.Post
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.CategoryID,
			&p.Condition, &p.Location, &p.ImageURL, &p.ContactInfo, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt,
			&l.Username, &l.OwnerContact, &l.CategoryName,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// foldedLike lower-cases col with the ICU root collation so non-ASCII text
// folds the same way regardless of the database locale.
func foldedLike(col string) string {
	return `LOWER(` + col + ` COLLATE "und-x-icu") LIKE ?`
}

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	if err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.CategoryID,
		&p.Condition, &p.Location, &p.ImageURL, &p.ContactInfo, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}
