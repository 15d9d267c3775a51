package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/internal/messaging"
	"github.com/sazonlabs/sazon/internal/store"
	"github.com/sazonlabs/sazon/internal/textmatch"
	"github.com/sazonlabs/sazon/pkg/models"
)

// RecipeGetter is the catalog lookup the preference tracker needs; narrowed
// from the full store so tests can use a fixture map.
type RecipeGetter interface {
	Get(ctx context.Context, id int64) (*models.Recipe, error)
}

// ProfileRepository persists user profiles; narrowed from the concrete store
// for the same reason.
type ProfileRepository interface {
	Load(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
}

// PreferenceService records per-user taste signals: weighted favorite
// categories and countries, bounded search and view histories, and the
// favorites set. Profiles are cached in memory and written through to the
// profile store after every mutation; persistence is fire-and-forget.
type PreferenceService struct {
	recipes  RecipeGetter
	profiles ProfileRepository
	events   *messaging.EventBus
	config   *config.RecommendationConfig
	logger   *logrus.Logger
	metrics  *MetricsCollector

	mu    sync.Mutex
	cache map[uuid.UUID]*models.UserProfile
}

func NewPreferenceService(
	recipes RecipeGetter,
	profiles ProfileRepository,
	events *messaging.EventBus,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
	metrics *MetricsCollector,
) *PreferenceService {
	return &PreferenceService{
		recipes:  recipes,
		profiles: profiles,
		events:   events,
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		cache:    make(map[uuid.UUID]*models.UserProfile),
	}
}

// Profile returns a deep-copied snapshot of the user's profile, restoring it
// from the store on first access. The canonical instance never leaves the
// service; all mutation goes through the Record and rating methods, which
// hold s.mu.
func (s *PreferenceService) Profile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.profileLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.Clone(), nil
}

func (s *PreferenceService) profileLocked(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if profile, ok := s.cache[userID]; ok {
		return profile, nil
	}

	profile, err := s.profiles.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	s.cache[userID] = profile
	return profile, nil
}

// RecordFavorite handles a favorite toggle. Favoriting adds a full-strength
// signal for every category and the country; unfavoriting only removes the
// recipe from the favorites set, accumulated weights stay (they are
// monotonic under normal use). An unknown recipe id is a silent no-op.
func (s *PreferenceService) RecordFavorite(ctx context.Context, userID uuid.UUID, recipeID int64, favorite bool, sessionID uuid.UUID) error {
	recipe, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrRecipeNotFound) {
			s.logger.WithField("recipe_id", recipeID).Debug("Ignoring favorite for unknown recipe")
			return nil
		}
		return err
	}

	s.mu.Lock()
	profile, err := s.profileLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	eventType := "unfavorite"
	if favorite {
		eventType = "favorite"
		profile.Favorites[recipeID] = true
		for _, category := range recipe.Categories {
			profile.Preferences.FavoriteCategories[category]++
		}
		if recipe.Country != "" {
			profile.Preferences.FavoriteCountries[recipe.Country]++
		}
	} else {
		delete(profile.Favorites, recipeID)
	}
	snapshot := profile.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	s.publish(models.InteractionEvent{
		UserID:    userID,
		RecipeID:  &recipeID,
		Type:      eventType,
		SessionID: sessionID,
	})

	if s.metrics != nil {
		s.metrics.CountInteraction(eventType)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"favorite":  favorite,
	}).Info("Recorded favorite toggle")

	return nil
}

// RecordView pushes the recipe onto the view history (most recent first,
// capped) and adds the weak view-strength signal to category and country
// weights. An unknown recipe id is a silent no-op.
func (s *PreferenceService) RecordView(ctx context.Context, userID uuid.UUID, recipeID int64, sessionID uuid.UUID) error {
	recipe, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrRecipeNotFound) {
			s.logger.WithField("recipe_id", recipeID).Debug("Ignoring view of unknown recipe")
			return nil
		}
		return err
	}

	s.mu.Lock()
	profile, err := s.profileLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	prefs := profile.Preferences
	prefs.ViewHistory = pushFront(prefs.ViewHistory, recipeID, models.MaxViewHistory)
	for _, category := range recipe.Categories {
		prefs.FavoriteCategories[category] += s.config.ViewSignalWeight
	}
	if recipe.Country != "" {
		prefs.FavoriteCountries[recipe.Country] += s.config.ViewSignalWeight
	}
	snapshot := profile.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	s.publish(models.InteractionEvent{
		UserID:    userID,
		RecipeID:  &recipeID,
		Type:      "view",
		SessionID: sessionID,
	})

	if s.metrics != nil {
		s.metrics.CountInteraction("view")
	}

	return nil
}

// RecordSearch pushes the normalized query onto the search history. Queries
// shorter than two runes after normalization carry no signal and are ignored.
func (s *PreferenceService) RecordSearch(ctx context.Context, userID uuid.UUID, query string, sessionID uuid.UUID) error {
	normalized := textmatch.Normalize(query)
	if utf8.RuneCountInString(normalized) < 2 {
		return nil
	}

	s.mu.Lock()
	profile, err := s.profileLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	profile.Preferences.SearchHistory = pushFront(profile.Preferences.SearchHistory, normalized, models.MaxSearchHistory)
	snapshot := profile.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	s.publish(models.InteractionEvent{
		UserID:    userID,
		Type:      "search",
		Query:     &normalized,
		SessionID: sessionID,
	})

	if s.metrics != nil {
		s.metrics.CountInteraction("search")
	}

	return nil
}

// SetPersonalRating stores the user's stars for a recipe and returns the
// value it replaced. The read of the previous value and the write happen
// under the profile lock so the rating aggregator can apply an exact delta.
func (s *PreferenceService) SetPersonalRating(ctx context.Context, userID uuid.UUID, recipeID int64, stars int) (previous int, replaced bool, err error) {
	s.mu.Lock()
	profile, err := s.profileLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return 0, false, err
	}

	previous, replaced = profile.PersonalRatings[recipeID]
	profile.PersonalRatings[recipeID] = stars
	snapshot := profile.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	return previous, replaced, nil
}

// ClearPersonalRating removes the user's stored stars for a recipe and
// returns them. Without a stored rating nothing changes and nothing is
// persisted.
func (s *PreferenceService) ClearPersonalRating(ctx context.Context, userID uuid.UUID, recipeID int64) (previous int, cleared bool, err error) {
	s.mu.Lock()
	profile, err := s.profileLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return 0, false, err
	}

	previous, cleared = profile.PersonalRatings[recipeID]
	if !cleared {
		s.mu.Unlock()
		return 0, false, nil
	}
	delete(profile.PersonalRatings, recipeID)
	snapshot := profile.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	return previous, true, nil
}

// persist schedules a write-through of a snapshot. Callers pass a copy taken
// under s.mu; the goroutine must never marshal the canonical instance.
func (s *PreferenceService) persist(profile *models.UserProfile) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.profiles.Save(ctx, profile); err != nil {
			s.logger.WithError(err).WithField("user_id", profile.UserID).Warn("Failed to persist user profile")
		}
	}()
}

func (s *PreferenceService) publish(event models.InteractionEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(event)
}

// pushFront prepends v and truncates to limit, evicting the oldest entries.
func pushFront[T any](history []T, v T, limit int) []T {
	history = append([]T{v}, history...)
	if len(history) > limit {
		history = history[:limit]
	}
	return history
}
