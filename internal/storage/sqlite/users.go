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

var userColumns = []string{
	"id", "username", "email", "password_hash",
	"COALESCE(phone_number, '') AS phone_number", "created_at",
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	b := builder.Insert("users").
		Columns("username", "email", "password_hash", "phone_number", "created_at").
		Values(user.Username, user.Email, user.PasswordHash, nullIfEmpty(user.Phone), s.now())
	query, args, err := b.ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return s.FindUserByID(ctx, id)
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	return s.findUser(ctx, sq.Eq{"id": id})
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(ctx, sq.Eq{"username": username})
}

func (s *Store) findUser(ctx context.Context, where sq.Eq) (models.User, error) {
	var user models.User
	if err := s.get(ctx, &user, builder.Select(userColumns...).From("users").Where(where)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var taken bool
	err := s.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ? OR email = ?)`, username, email)
	if err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return taken, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	b := builder.Select(userColumns...).From("users").OrderBy("created_at DESC", "id DESC")
	if err := s.selectAll(ctx, &users, b); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
