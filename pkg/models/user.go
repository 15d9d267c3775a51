package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSearchHistory bounds the per-user search history (most recent first).
	MaxSearchHistory = 50
	// MaxViewHistory bounds the per-user view history (most recent first).
	MaxViewHistory = 100
)

// UserPreferences accumulates per-user taste signals. Weights are non-negative
// and grow monotonically under normal use; histories are MRU-ordered and capped.
type UserPreferences struct {
	FavoriteCategories map[string]float64 `json:"favorite_categories"`
	FavoriteCountries  map[string]float64 `json:"favorite_countries"`
	SearchHistory      []string           `json:"search_history"`
	ViewHistory        []int64            `json:"view_history"`
}

// NewUserPreferences returns an empty preference set with initialized maps.
func NewUserPreferences() *UserPreferences {
	return &UserPreferences{
		FavoriteCategories: make(map[string]float64),
		FavoriteCountries:  make(map[string]float64),
	}
}

// TotalSignalStrength is the cold-start gate: the number of distinct signals
// recorded across all four collections.
func (p *UserPreferences) TotalSignalStrength() int {
	return len(p.FavoriteCategories) + len(p.FavoriteCountries) +
		len(p.SearchHistory) + len(p.ViewHistory)
}

// UserProfile is the durable per-user state: preference signals, the favorites
// set, and the user's personal star ratings keyed by recipe id.
type UserProfile struct {
	UserID          uuid.UUID        `json:"user_id"`
	Preferences     *UserPreferences `json:"preferences"`
	Favorites       map[int64]bool   `json:"favorites"`
	PersonalRatings map[int64]int    `json:"personal_ratings"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewUserProfile returns an empty profile for the given user.
func NewUserProfile(userID uuid.UUID) *UserProfile {
	return &UserProfile{
		UserID:          userID,
		Preferences:     NewUserPreferences(),
		Favorites:       make(map[int64]bool),
		PersonalRatings: make(map[int64]int),
	}
}

// Clone returns a deep copy of the profile. The preference tracker mutates
// the canonical instance under its lock and hands copies to readers and the
// persistence goroutines.
func (p *UserProfile) Clone() *UserProfile {
	clone := &UserProfile{
		UserID: p.UserID,
		Preferences: &UserPreferences{
			FavoriteCategories: make(map[string]float64, len(p.Preferences.FavoriteCategories)),
			FavoriteCountries:  make(map[string]float64, len(p.Preferences.FavoriteCountries)),
			SearchHistory:      append([]string(nil), p.Preferences.SearchHistory...),
			ViewHistory:        append([]int64(nil), p.Preferences.ViewHistory...),
		},
		Favorites:       make(map[int64]bool, len(p.Favorites)),
		PersonalRatings: make(map[int64]int, len(p.PersonalRatings)),
		UpdatedAt:       p.UpdatedAt,
	}
	for category, weight := range p.Preferences.FavoriteCategories {
		clone.Preferences.FavoriteCategories[category] = weight
	}
	for country, weight := range p.Preferences.FavoriteCountries {
		clone.Preferences.FavoriteCountries[country] = weight
	}
	for id, favorite := range p.Favorites {
		clone.Favorites[id] = favorite
	}
	for id, stars := range p.PersonalRatings {
		clone.PersonalRatings[id] = stars
	}
	return clone
}
