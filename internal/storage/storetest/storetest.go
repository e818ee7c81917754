// Package storetest holds the behaviour every storage.Store implementation
// must share. Store packages run it from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

// Factory returns an empty store. It should register its own cleanup.
type Factory func(t *testing.T) storage.Store

// Run exercises a store implementation.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("PostLifecycle", func(t *testing.T) { testPostLifecycle(t, newStore(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore(t)) })
	t.Run("DanglingCategory", func(t *testing.T) { testDanglingCategory(t, newStore(t)) })
}

// MustUser inserts a user with a placeholder hash.
func MustUser(t *testing.T, s storage.Store, username string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@colorado.edu",
		PasswordHash: "fakehash",
	})
	require.NoError(t, err)
	return u
}

func price(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, models.User{
		Username: "alice", Email: "alice@colorado.edu", PasswordHash: "h1", Phone: "3035551234",
	})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.Equal(t, "3035551234", alice.Phone)
	assert.False(t, alice.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, models.User{Username: "alice", Email: "other@colorado.edu", PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	_, err = s.CreateUser(ctx, models.User{Username: "other", Email: "alice@colorado.edu", PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	taken, err := s.UsernameOrEmailTaken(ctx, "alice", "nobody@colorado.edu")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.UsernameOrEmailTaken(ctx, "nobody", "alice@colorado.edu")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.UsernameOrEmailTaken(ctx, "Alice", "nobody@colorado.edu")
	require.NoError(t, err)
	assert.False(t, taken, "usernames are case-sensitive")

	byName, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", byName.PasswordHash)

	byID, err := s.FindUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.FindUserByID(ctx, alice.ID+1000)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	bob := MustUser(t, s, "bob")
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, bob.ID, users[0].ID, "newest first")
	assert.Empty(t, users[0].Phone)
}

func testCategories(t *testing.T, s storage.Store) {
	ctx := context.Background()

	books, err := s.CreateCategory(ctx, "Books")
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, "Apparel")
	require.NoError(t, err)

	_, err = s.CreateCategory(ctx, "Books")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := s.FindCategory(ctx, books.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", got.Name)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Apparel", list[0].Name)
	assert.Equal(t, "Books", list[1].Name)

	require.NoError(t, s.DeleteCategory(ctx, books.ID))
	assert.ErrorIs(t, s.DeleteCategory(ctx, books.ID), storage.ErrNotFound)
	_, err = s.FindCategory(ctx, books.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testPostLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := MustUser(t, s, "seller")
	cat, err := s.CreateCategory(ctx, "Furniture")
	require.NoError(t, err)

	created, err := s.CreatePost(ctx, models.Post{
		UserID:      owner.ID,
		Title:       "Desk",
		Description: "Solid oak",
		Price:       price(45.5),
		CategoryID:  &cat.ID,
		Condition:   "Used",
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)
	require.NotNil(t, created.Price)
	assert.InDelta(t, 45.5, *created.Price, 0.001)
	assert.Empty(t, created.Location)

	time.Sleep(10 * time.Millisecond)
	updated, err := s.UpdatePost(ctx, created.ID, models.PostPatch{Title: str("Standing desk")})
	require.NoError(t, err)
	assert.Equal(t, "Standing desk", updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Condition, updated.Condition)
	assert.Equal(t, created.CategoryID, updated.CategoryID)
	assert.Equal(t, created.Price, updated.Price)
	assert.Equal(t, created.IsActive, updated.IsActive)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = s.UpdatePost(ctx, created.ID+1000, models.PostPatch{Title: str("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	inactive, err := s.SetPostActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
	assert.Equal(t, "Standing desk", inactive.Title)
	active, err := s.SetPostActive(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, active.IsActive)
	_, err = s.SetPostActive(ctx, created.ID+1000, true)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	second, err := s.CreatePost(ctx, models.Post{UserID: owner.ID, Title: "Lamp", IsActive: true})
	require.NoError(t, err)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.CategoryID)

	mine, err := s.ListPostsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)

	require.NoError(t, s.DeletePost(ctx, created.ID))
	assert.ErrorIs(t, s.DeletePost(ctx, created.ID), storage.ErrNotFound)
	_, err = s.FindPost(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testSearch(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := MustUser(t, s, "searcher")
	books, err := s.CreateCategory(ctx, "Books")
	require.NoError(t, err)

	mk := func(p models.Post) models.Post {
		t.Helper()
		p.UserID = owner.ID
		p.IsActive = true
		created, err := s.CreatePost(ctx, p)
		require.NoError(t, err)
		return created
	}
	calc := mk(models.Post{Title: "Calculus Textbook", CategoryID: &books.ID})
	bike := mk(models.Post{Title: "Road bike", Description: "Barely RIDDEN"})
	couch := mk(models.Post{Title: "Couch", Location: "Williams Village"})
	mk(models.Post{Title: "Mini fridge", Condition: "Like new"})
	sale := mk(models.Post{Title: "Sale 50% off"})

	all, err := s.SearchPosts(ctx, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, sale.ID, all[0].ID, "newest first")
	assert.Equal(t, calc.ID, all[4].ID)
	assert.Equal(t, "searcher", all[4].Username)
	assert.Equal(t, "searcher@colorado.edu", all[4].OwnerContact)
	assert.Equal(t, "Books", all[4].CategoryName)

	ids := func(ls []models.PostListing) []int64 {
		out := make([]int64, 0, len(ls))
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	got, err := s.SearchPosts(ctx, models.PostFilter{Query: "ridden"})
	require.NoError(t, err)
	assert.Equal(t, []int64{bike.ID}, ids(got))

	got, err = s.SearchPosts(ctx, models.PostFilter{Query: "VILLAGE"})
	require.NoError(t, err)
	assert.Equal(t, []int64{couch.ID}, ids(got))

	got, err = s.SearchPosts(ctx, models.PostFilter{Query: "new"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchPosts(ctx, models.PostFilter{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, []int64{sale.ID}, ids(got), "wildcards match literally")

	got, err = s.SearchPosts(ctx, models.PostFilter{Query: "nothing matches this"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.SearchPosts(ctx, models.PostFilter{CategoryName: "books"})
	require.NoError(t, err)
	assert.Equal(t, []int64{calc.ID}, ids(got))

	got, err = s.SearchPosts(ctx, models.PostFilter{Query: " bike"})
	require.NoError(t, err)
	assert.Equal(t, []int64{bike.ID}, ids(got))
	glued := mk(models.Post{Title: "Mountainbike"})
	got, err = s.SearchPosts(ctx, models.PostFilter{Query: "bike"})
	require.NoError(t, err)
	assert.Equal(t, []int64{glued.ID, bike.ID}, ids(got))
	got, err = s.SearchPosts(ctx, models.PostFilter{Query: " bike"})
	require.NoError(t, err)
	assert.Equal(t, []int64{bike.ID}, ids(got), "surrounding spaces are part of the query")

	ecole := mk(models.Post{Title: "ÉCOLE notebook", Description: "Cahier À spirale"})
	for _, q := range []string{"école", "École", "ÉCOLE", "à SPIRALE"} {
		got, err = s.SearchPosts(ctx, models.PostFilter{Query: q})
		require.NoError(t, err)
		assert.Equal(t, []int64{ecole.ID}, ids(got), "query %q", q)
	}

	electronics, err := s.CreateCategory(ctx, "Électronique")
	require.NoError(t, err)
	radio := mk(models.Post{Title: "Radio", CategoryID: &electronics.ID})
	got, err = s.SearchPosts(ctx, models.PostFilter{CategoryName: "ÉLECTRONIQUE"})
	require.NoError(t, err)
	assert.Equal(t, []int64{radio.ID}, ids(got))
}

func testDanglingCategory(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := MustUser(t, s, "dangler")
	cat, err := s.CreateCategory(ctx, "Books")
	require.NoError(t, err)
	post, err := s.CreatePost(ctx, models.Post{UserID: owner.ID, Title: "Novel", CategoryID: &cat.ID, IsActive: true})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))

	got, err := s.FindPost(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)

	listings, err := s.SearchPosts(ctx, models.PostFilter{Query: "novel"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Empty(t, listings[0].CategoryName)
}
