// Package seed loads the demo categories, placeholder users and sample posts
// into an empty marketplace.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/models"
	"github.com/hongminglow/campus-market/internal/storage"
)

// PlaceholderHash is stored for seeded users. It is not a bcrypt hash, so
// those accounts can never log in.
const PlaceholderHash = "fakehash"

// Categories is the fixed category vocabulary.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Vehicles",
	"Sports",
	"Beauty and Health",
	"Furniture",
	"Books",
}

type samplePost struct {
	title, description, category string
	price                        float64
	image                        string
}

var samplePosts = []samplePost{
	{"AirPods Pro (2nd Gen)", "Barely used, perfect condition. Includes all original accessories.", "Electronics", 180, "https://m.media-amazon.com/images/I/61sRKTAfrhL._AC_UF894,1000_QL80_.jpg"},
	{"Samsung 27-inch Gaming Monitor", "144Hz, 1ms response time. Great for CS students or gaming setups.", "Electronics", 120, "https://m.media-amazon.com/images/I/81cSdJuBbFL.jpg"},
	{"RTX 3060 Graphics Card", "Runs cool and quiet. Selling because I upgraded my build.", "Electronics", 295, "https://m.media-amazon.com/images/I/71hoPufXoDL._AC_UF894,1000_QL80_.jpg"},
	{"North Face Puffer Jacket, Size M", "Warm and lightweight; great for Colorado winters.", "Clothing", 70, "https://i.ebayimg.com/images/g/nHkAAOSw731i0JbJ/s-l1200.jpg"},
	{"Nike Dri-Fit Hoodie, Size L", "Barely worn, no stains or tears.", "Clothing", 25, ""},
	{"Trek Mountain Bike AL 3", "Recently tuned, perfect for campus commuting and Boulder trails.", "Vehicles", 300, "https://www.sefiles.net/images/library/zoom/trek-domane-al-3-disc-380927-1.jpg"},
	{"Electric Scooter, 15 Mile Range", "Foldable, lightweight, and great battery life.", "Vehicles", 200, ""},
	{"Wilson NCAA Basketball (Official Size)", "Used twice, still has factory grip.", "Sports", 20, ""},
	{"Snowboard + Bindings Package", "Great beginner board for local resorts.", "Sports", 150, ""},
	{"Revlon One-Step Hair Dryer & Volumizer", "Works great, just upgraded to a Dyson.", "Beauty and Health", 25, ""},
	{"Set of 3 Resistance Bands", "Perfect for dorm room or small-space workouts.", "Beauty and Health", 10, ""},
	{"IKEA Desk (White)", "Minimalist study desk, perfect for school setups.", "Furniture", 50, "https://www.ikea.com/us/en/images/products/micke-desk-white__0736018_pe740345_s5.jpg?f=s"},
	{"Memory Foam Office Chair", "Very comfortable, adjustable back support.", "Furniture", 40, ""},
	{"Clean Code by Robert C. Martin", "Excellent condition, required reading for many CS classes.", "Books", 15, ""},
	{"The Pragmatic Programmer", "Light wear, no writing or marks inside.", "Books", 10, ""},
}

// Result counts what a run inserted.
type Result struct {
	Categories int
	Users      int
	Posts      int
}

// Run seeds store. Existing categories and users are kept; posts are only
// added when the store has none.
func Run(ctx context.Context, store storage.Store, log *zap.Logger) (Result, error) {
	var res Result

	categoryIDs := make(map[string]int64, len(Categories))
	for _, name := range Categories {
		c, err := store.CreateCategory(ctx, name)
		if err == nil {
			res.Categories++
		} else if !errors.Is(err, storage.ErrAlreadyExists) {
			return res, fmt.Errorf("seed category %q: %w", name, err)
		}
		if c.ID != 0 {
			categoryIDs[name] = c.ID
		}
	}
	if len(categoryIDs) < len(Categories) {
		all, err := store.ListCategories(ctx)
		if err != nil {
			return res, fmt.Errorf("list categories: %w", err)
		}
		for _, c := range all {
			categoryIDs[c.Name] = c.ID
		}
	}

	users := make([]models.User, 0, 5)
	for i := 1; i <= 5; i++ {
		username := fmt.Sprintf("user%d", i)
		u, err := store.FindByUsername(ctx, username)
		if errors.Is(err, storage.ErrNotFound) {
			u, err = store.CreateUser(ctx, models.User{
				Username:     username,
				Email:        username + "@colorado.edu",
				PasswordHash: PlaceholderHash,
			})
			if err == nil {
				res.Users++
			}
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", username, err)
		}
		users = append(users, u)
	}

	existing, err := store.SearchPosts(ctx, models.PostFilter{})
	if err != nil {
		return res, fmt.Errorf("count posts: %w", err)
	}
	if len(existing) > 0 {
		log.Info("posts already present, skipping sample posts", zap.Int("posts", len(existing)))
		return res, nil
	}

	for i, sp := range samplePosts {
		owner := users[i%len(users)]
		price := sp.price
		post := models.Post{
			UserID:      owner.ID,
			Title:       sp.title,
			Description: sp.description,
			Price:       &price,
			Condition:   "Good",
			Location:    "CU Boulder",
			ImageURL:    sp.image,
			ContactInfo: owner.Email,
			IsActive:    true,
		}
		if id, ok := categoryIDs[sp.category]; ok {
			post.CategoryID = &id
		}
		if _, err := store.CreatePost(ctx, post); err != nil {
			return res, fmt.Errorf("seed post %q: %w", sp.title, err)
		}
		res.Posts++
	}
	return res, nil
}
