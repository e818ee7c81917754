// Package listing implements the post lifecycle: creation, partial updates,
// activation status, deletion and search.
package listing

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/apperr"
	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

const (
	MsgTitleRequired      = "title is required."
	MsgUserMissing        = "User does not exist."
	MsgCategoryMissing    = "Category does not exist."
	MsgCategoryNotNumeric = "category_id must be a number."
	MsgPostNotFound       = "Post not found"
)

// Service owns the Post invariants.
type Service struct {
	users      storage.UserStore
	categories storage.CategoryStore
	posts      storage.PostStore
	log        *zap.Logger
}

func NewService(users storage.UserStore, categories storage.CategoryStore, posts storage.PostStore, log *zap.Logger) *Service {
	return &Service{users: users, categories: categories, posts: posts, log: log.Named("listing")}
}

// CreateInput is a new listing as submitted. Price and CategoryID keep their
// submitted text and are coerced on create.
type CreateInput struct {
	UserID      int64
	Title       string
	Description string
	Price       string
	CategoryID  string
	Condition   string
	Location    string
	ImageURL    string
	ContactInfo string
}

// Patch is a partial update as submitted. Empty fields are left unchanged.
type Patch struct {
	Title       string
	Description string
	Price       string
	CategoryID  string
	Condition   string
	Location    string
	ImageURL    string
	ContactInfo string
}

// Create stores a new active listing.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Post{}, apperr.Validation(MsgTitleRequired)
	}
	categoryID, err := parseCategoryID(in.CategoryID)
	if err != nil {
		return models.Post{}, err
	}
	if err := s.requireUser(ctx, in.UserID); err != nil {
		return models.Post{}, err
	}
	if categoryID != nil {
		if err := s.requireCategory(ctx, *categoryID); err != nil {
			return models.Post{}, err
		}
	}

	post, err := s.posts.CreatePost(ctx, models.Post{
		UserID:      in.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Price:       ParsePrice(in.Price),
		CategoryID:  categoryID,
		Condition:   strings.TrimSpace(in.Condition),
		Location:    strings.TrimSpace(in.Location),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		ContactInfo: strings.TrimSpace(in.ContactInfo),
		IsActive:    true,
	})
	if err != nil {
		return models.Post{}, s.internal("create post", err)
	}
	s.log.Info("post created", zap.Int64("post_id", post.ID), zap.Int64("user_id", post.UserID))
	return post, nil
}

// Update merges the supplied fields into an existing listing.
func (s *Service) Update(ctx context.Context, postID int64, in Patch) (models.Post, error) {
	if _, err := s.GetByID(ctx, postID); err != nil {
		return models.Post{}, err
	}

	var patch models.PostPatch
	patch.Title = supplied(in.Title)
	patch.Description = supplied(in.Description)
	patch.Condition = supplied(in.Condition)
	patch.Location = supplied(in.Location)
	patch.ImageURL = supplied(in.ImageURL)
	patch.ContactInfo = supplied(in.ContactInfo)
	patch.Price = ParsePrice(in.Price)

	categoryID, err := parseCategoryID(in.CategoryID)
	if err != nil {
		return models.Post{}, err
	}
	if categoryID != nil {
		if err := s.requireCategory(ctx, *categoryID); err != nil {
			return models.Post{}, err
		}
		patch.CategoryID = categoryID
	}

	post, err := s.posts.UpdatePost(ctx, postID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Post{}, apperr.NotFound(MsgPostNotFound)
		}
		return models.Post{}, s.internal("update post", err)
	}
	return post, nil
}

// SetStatus activates or deactivates a listing.
func (s *Service) SetStatus(ctx context.Context, postID int64, active bool) (models.Post, error) {
	post, err := s.posts.SetPostActive(ctx, postID, active)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Post{}, apperr.NotFound(MsgPostNotFound)
		}
		return models.Post{}, s.internal("set post status", err)
	}
	s.log.Info("post status changed", zap.Int64("post_id", postID), zap.Bool("active", active))
	return post, nil
}

func (s *Service) Delete(ctx context.Context, postID int64) error {
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(MsgPostNotFound)
		}
		return s.internal("delete post", err)
	}
	s.log.Info("post deleted", zap.Int64("post_id", postID))
	return nil
}

func (s *Service) GetByID(ctx context.Context, postID int64) (models.Post, error) {
	post, err := s.posts.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Post{}, apperr.NotFound(MsgPostNotFound)
		}
		return models.Post{}, s.internal("find post", err)
	}
	return post, nil
}

// ListByUser returns a user's posts, newest first. Unknown users own nothing.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	posts, err := s.posts.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, s.internal("list posts by user", err)
	}
	return posts, nil
}

// Search matches q case-insensitively against title, description, location
// and condition. q is matched as given, spaces included; an empty q matches
// every post.
func (s *Service) Search(ctx context.Context, q string) ([]models.PostListing, error) {
	return s.search(ctx, models.PostFilter{Query: q})
}

func (s *Service) ListAll(ctx context.Context) ([]models.PostListing, error) {
	return s.search(ctx, models.PostFilter{})
}

// ListByCategoryName returns posts filed under the named category, matched
// case-insensitively.
func (s *Service) ListByCategoryName(ctx context.Context, name string) ([]models.PostListing, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []models.PostListing{}, nil
	}
	return s.search(ctx, models.PostFilter{CategoryName: name})
}

func (s *Service) search(ctx context.Context, filter models.PostFilter) ([]models.PostListing, error) {
	listings, err := s.posts.SearchPosts(ctx, filter)
	if err != nil {
		return nil, s.internal("search posts", err)
	}
	return listings, nil
}

func (s *Service) requireUser(ctx context.Context, id int64) error {
	if _, err := s.users.FindUserByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(MsgUserMissing)
		}
		return s.internal("find owner", err)
	}
	return nil
}

func (s *Service) requireCategory(ctx context.Context, id int64) error {
	if _, err := s.categories.FindCategory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(MsgCategoryMissing)
		}
		return s.internal("find category", err)
	}
	return nil
}

func (s *Service) internal(op string, err error) error {
	s.log.Error(op+" failed", zap.Error(err))
	return apperr.Internal(err)
}

// ParsePrice coerces submitted text to a non-negative amount rounded to
// cents. Blank, malformed or negative input yields nil.
func ParsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	v = math.Round(v*100) / 100
	return &v
}

func parseCategoryID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation(MsgCategoryNotNumeric)
	}
	return &id, nil
}

func supplied(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
