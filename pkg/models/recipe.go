package models

import "time"

// Recipe is a catalog entry as served by the persistence layer. The core treats
// it as read-only; Rating and ReviewCount are derived from the rating aggregate
// and are never edited independently of it.
type Recipe struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,min=1,max=255"`
	Country     string    `json:"country,omitempty" db:"country"`
	Categories  []string  `json:"categories,omitempty" db:"categories"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	Rating      float64   `json:"rating" db:"rating"`
	ReviewCount int       `json:"review_count" db:"review_count"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RatingStat is the running aggregate backing a recipe's displayed rating.
// Invariant: Count == 0 implies Total == 0.
type RatingStat struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Mean returns the displayed rating, 0 for an unrated recipe.
func (s RatingStat) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Total / float64(s.Count)
}

// RatingSummary is the aggregate view returned to callers.
type RatingSummary struct {
	RecipeID int64   `json:"recipe_id"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
}

type RecipeIngestionRequest struct {
	ID         int64    `json:"id" validate:"required"`
	Name       string   `json:"name" validate:"required,min=1,max=255"`
	Country    string   `json:"country,omitempty"`
	Categories []string `json:"categories,omitempty"`
	ImageURL   *string  `json:"image_url,omitempty"`
}

// ScoredRecipe pairs a recipe with the score that ranked it.
type ScoredRecipe struct {
	Recipe    Recipe  `json:"recipe"`
	Score     float64 `json:"score"`
	Algorithm string  `json:"algorithm"`
	Position  int     `json:"position"`
}
