package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/messaging"
	"github.com/sazonlabs/sazon/pkg/models"
)

// ErrInvalidRating rejects stars outside 1..5. Ratings are never silently
// clamped; a coerced value would corrupt the running mean.
var ErrInvalidRating = errors.New("rating must be between 1 and 5 stars")

// RatingCatalog is the catalog access the aggregator needs: existence checks
// and the write-back of derived rating columns.
type RatingCatalog interface {
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	UpdateRatingSummary(ctx context.Context, id int64, count int, mean float64) error
}

// RatingStatRepository persists the per-recipe aggregates across restarts.
type RatingStatRepository interface {
	LoadAll(ctx context.Context) (map[int64]models.RatingStat, error)
	Save(ctx context.Context, recipeID int64, stat models.RatingStat) error
}

// RatingService maintains the per-recipe (count, total) aggregate so a user's
// rating can be added, replaced or withdrawn without rescanning individual
// ratings. A single mutex serializes the read-modify-write on the aggregates;
// the user's stored stars live on the profile and are read and written
// through the preference service, which owns the profile lock.
type RatingService struct {
	catalog RatingCatalog
	prefs   *PreferenceService
	stats   RatingStatRepository
	events  *messaging.EventBus
	logger  *logrus.Logger
	metrics *MetricsCollector

	mu        sync.RWMutex
	aggregate map[int64]models.RatingStat
}

func NewRatingService(
	catalog RatingCatalog,
	prefs *PreferenceService,
	stats RatingStatRepository,
	events *messaging.EventBus,
	logger *logrus.Logger,
	metrics *MetricsCollector,
) *RatingService {
	return &RatingService{
		catalog:   catalog,
		prefs:     prefs,
		stats:     stats,
		events:    events,
		logger:    logger,
		metrics:   metrics,
		aggregate: make(map[int64]models.RatingStat),
	}
}

// Restore loads the persisted aggregates at startup.
func (s *RatingService) Restore(ctx context.Context) error {
	stats, err := s.stats.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore rating aggregates: %w", err)
	}

	s.mu.Lock()
	s.aggregate = stats
	s.mu.Unlock()

	s.logger.WithField("recipes", len(stats)).Info("Rating aggregates restored")
	return nil
}

// Rate records or replaces a user's star rating. Re-rating corrects the
// running total without touching the count; a first rating adds to both.
// Unknown recipes surface store.ErrRecipeNotFound rather than silently
// creating an aggregate.
func (s *RatingService) Rate(ctx context.Context, recipeID int64, userID uuid.UUID, stars int, sessionID uuid.UUID) error {
	if stars < 1 || stars > 5 {
		return ErrInvalidRating
	}

	if _, err := s.catalog.Get(ctx, recipeID); err != nil {
		return err
	}

	previous, replaced, err := s.prefs.SetPersonalRating(ctx, userID, recipeID, stars)
	if err != nil {
		return err
	}

	s.mu.Lock()
	stat := s.aggregate[recipeID]
	if replaced {
		// Replace, not add: the user's old contribution leaves the total.
		stat.Total += float64(stars - previous)
	} else {
		stat.Count++
		stat.Total += float64(stars)
	}
	s.aggregate[recipeID] = stat
	s.mu.Unlock()

	s.persistStat(recipeID, stat)
	s.publishEvent(models.InteractionEvent{
		UserID:    userID,
		RecipeID:  &recipeID,
		Type:      "rating",
		Stars:     &stars,
		SessionID: sessionID,
	})

	if s.metrics != nil {
		s.metrics.CountRating("rate")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"stars":     stars,
		"replaced":  replaced,
	}).Info("Recorded rating")

	return nil
}

// Clear withdraws a user's rating. Without a prior personal rating this is a
// no-op. The user's stored stars are subtracted from the total (exact for
// this user's contribution) and the count drops, floored at zero; an empty
// aggregate always resets to the zero state.
func (s *RatingService) Clear(ctx context.Context, recipeID int64, userID uuid.UUID, sessionID uuid.UUID) error {
	previous, cleared, err := s.prefs.ClearPersonalRating(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !cleared {
		return nil
	}

	s.mu.Lock()
	stat := s.aggregate[recipeID]
	if stat.Count > 0 {
		stat.Count--
	}
	stat.Total -= float64(previous)
	if stat.Count == 0 || stat.Total < 0 {
		stat.Total = 0
	}
	s.aggregate[recipeID] = stat
	s.mu.Unlock()

	s.persistStat(recipeID, stat)
	s.publishEvent(models.InteractionEvent{
		UserID:    userID,
		RecipeID:  &recipeID,
		Type:      "rating_cleared",
		SessionID: sessionID,
	})

	if s.metrics != nil {
		s.metrics.CountRating("clear")
	}

	return nil
}

// Aggregate returns the current (count, mean) view for a recipe. A recipe
// nobody has rated reads as the zero state.
func (s *RatingService) Aggregate(recipeID int64) models.RatingSummary {
	s.mu.RLock()
	stat := s.aggregate[recipeID]
	s.mu.RUnlock()

	return models.RatingSummary{
		RecipeID: recipeID,
		Count:    stat.Count,
		Mean:     stat.Mean(),
	}
}

// persistStat writes the aggregate through to Redis and the derived catalog
// columns. Persistence is fire-and-forget; the in-memory aggregate is the
// source of truth for this process.
func (s *RatingService) persistStat(recipeID int64, stat models.RatingStat) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.stats.Save(ctx, recipeID, stat); err != nil {
			s.logger.WithError(err).WithField("recipe_id", recipeID).Warn("Failed to persist rating aggregate")
		}

		if err := s.catalog.UpdateRatingSummary(ctx, recipeID, stat.Count, stat.Mean()); err != nil {
			s.logger.WithError(err).WithField("recipe_id", recipeID).Warn("Failed to update catalog rating summary")
		}
	}()
}

func (s *RatingService) publishEvent(event models.InteractionEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(event)
}
