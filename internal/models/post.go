package models

import "time"

// Post is a single marketplace listing owned by a user.
//
// Optional text columns are NULL in storage when empty and surface here as
// empty strings. Price and CategoryID stay nil when absent.
type Post struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       *float64  `json:"price" db:"price"`
	CategoryID  *int64    `json:"category_id" db:"category_id"`
	Condition   string    `json:"condition" db:"condition"`
	Location    string    `json:"location" db:"location"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	ContactInfo string    `json:"contact_info" db:"contact_info"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PostPatch carries a partial update. Nil fields keep their stored value.
type PostPatch struct {
	Title       *string
	Description *string
	Price       *float64
	CategoryID  *int64
	Condition   *string
	Location    *string
	ImageURL    *string
	ContactInfo *string
}

// PostListing is a post joined with its owner and category for presentation.
type PostListing struct {
	Post
	Username     string `json:"username" db:"username"`
	OwnerContact string `json:"owner_contact" db:"owner_contact"`
	CategoryName string `json:"category_name" db:"category_name"`
}

// PostFilter narrows a listing search. Zero values match everything.
type PostFilter struct {
	Query        string
	CategoryName string
}
