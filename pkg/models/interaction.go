package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionEvent is the record published to the analytics event stream for
// every preference or rating mutation. Downstream consumers (gamification,
// review bots) are outside this service.
type InteractionEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RecipeID  *int64    `json:"recipe_id,omitempty"`
	Type      string    `json:"type"` // favorite, unfavorite, view, search, rating, rating_cleared
	Stars     *int      `json:"stars,omitempty"`
	Query     *string   `json:"query,omitempty"`
	SessionID uuid.UUID `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type FavoriteRequest struct {
	RecipeID  int64     `json:"recipe_id" validate:"required"`
	Favorite  bool      `json:"favorite"`
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

type ViewRequest struct {
	RecipeID  int64     `json:"recipe_id" validate:"required"`
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

type SearchEventRequest struct {
	Query     string    `json:"query" validate:"required"`
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

type RatingRequest struct {
	Stars     int       `json:"stars" validate:"required,min=1,max=5"`
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}
