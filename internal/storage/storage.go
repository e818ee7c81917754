package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/campus-market/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations on accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// CategoryStore captures persistence operations on categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	FindCategory(ctx context.Context, id int64) (models.Category, error)
	// DeleteCategory returns ErrNotFound when no row was removed. Posts that
	// reference the category keep their category_id.
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// PostStore captures persistence operations on listings.
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	FindPost(ctx context.Context, id int64) (models.Post, error)
	// UpdatePost applies the non-nil patch fields and refreshes updated_at.
	UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (models.Post, error)
	SetPostActive(ctx context.Context, id int64, active bool) (models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error)
	SearchPosts(ctx context.Context, filter models.PostFilter) ([]models.PostListing, error)
}

// Store is the full durable store a server runs against.
type Store interface {
	UserStore
	CategoryStore
	PostStore
	Ping(ctx context.Context) error
	Close() error
}
