package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/pkg/models"
)

// ProfileStore persists UserProfile state in the hot Redis tier. Profiles are
// written through after every mutation and loaded lazily per user.
type ProfileStore struct {
	redis  *redis.Client
	logger *logrus.Logger
}

func NewProfileStore(redis *redis.Client, logger *logrus.Logger) *ProfileStore {
	return &ProfileStore{redis: redis, logger: logger}
}

func profileKey(userID uuid.UUID) string {
	return "user_profile:" + userID.String()
}

// Load restores a user's profile, returning a fresh empty profile when none
// has been persisted yet.
func (s *ProfileStore) Load(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	data, err := s.redis.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return models.NewUserProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile for %s: %w", userID, err)
	}

	// Older payloads may predate one of the collections.
	if profile.Preferences == nil {
		profile.Preferences = models.NewUserPreferences()
	}
	if profile.Preferences.FavoriteCategories == nil {
		profile.Preferences.FavoriteCategories = make(map[string]float64)
	}
	if profile.Preferences.FavoriteCountries == nil {
		profile.Preferences.FavoriteCountries = make(map[string]float64)
	}
	if profile.Favorites == nil {
		profile.Favorites = make(map[int64]bool)
	}
	if profile.PersonalRatings == nil {
		profile.PersonalRatings = make(map[int64]int)
	}

	return &profile, nil
}

// Save persists the profile. Callers treat persistence as fire-and-forget;
// failures are logged, never surfaced to the mutating operation.
func (s *ProfileStore) Save(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile for %s: %w", profile.UserID, err)
	}

	if err := s.redis.Set(ctx, profileKey(profile.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", profile.UserID, err)
	}

	return nil
}
