package models

// Category is a listing classification such as "Books" or "Furniture".
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
