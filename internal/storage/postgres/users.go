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

var userColumns = []string{"id", "username", "email", "password_hash", "COALESCE(phone_number, '')", "created_at"}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	b := psql.Insert("users").
		Columns("username", "email", "password_hash", "phone_number").
		Values(user.Username, user.Email, user.PasswordHash, nullIfEmpty(user.Phone)).
		Suffix("RETURNING " + joinColumns(userColumns))
	row, err := s.queryRow(ctx, b)
	if err != nil {
		return models.User{}, err
	}
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	row, err := s.queryRow(ctx, psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return models.User{}, err
	}
	return scanUser(row)
}

// FindByUsername fetches a user by exact username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row, err := s.queryRow(ctx, psql.Select(userColumns...).From("users").Where(sq.Eq{"username": username}))
	if err != nil {
		return models.User{}, err
	}
	return scanUser(row)
}

// UsernameOrEmailTaken reports whether either identifier is already registered.
func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var taken bool
	if err := s.pool.QueryRow(ctx, query, username, email).Scan(&taken); err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return taken, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, psql.Select(userColumns...).From("users").OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Phone, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
