package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/internal/database"
	"github.com/sazonlabs/sazon/internal/messaging"
	"github.com/sazonlabs/sazon/internal/store"
)

type Services struct {
	Auth           *AuthService
	Health         *HealthService
	RateLimit      *RateLimitService
	EventBus       *messaging.EventBus
	Catalog        *store.CachedRecipeStore
	Metrics        *MetricsCollector
	Search         *FuzzySearchService
	Preferences    *PreferenceService
	Recommendation *RecommendationService
	Ratings        *RatingService
	Analytics      *AnalyticsService
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	authService := NewAuthService(cfg, logger, db.Redis.Hot)
	healthService := NewHealthService(cfg, logger, db)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis.Hot)
	metrics := NewMetricsCollector(logger)

	eventBus := messaging.NewEventBus(cfg, logger)

	// Persistence collaborators
	recipeStore := store.NewRecipeStore(db.PG, logger)
	catalog := store.NewCachedRecipeStore(recipeStore, db.Redis.Warm, cfg.Cache.CatalogTTL, logger)
	profileStore := store.NewProfileStore(db.Redis.Hot, logger)
	ratingStatStore := store.NewRatingStatStore(db.Redis.Hot, logger)

	// Personalization core
	searchService := NewFuzzySearchService(&cfg.Search, logger, metrics)
	preferenceService := NewPreferenceService(catalog, profileStore, eventBus, &cfg.Recommendation, logger, metrics)
	recommendationService := NewRecommendationService(&cfg.Recommendation, logger, metrics)
	ratingService := NewRatingService(catalog, preferenceService, ratingStatStore, eventBus, logger, metrics)
	analyticsService := NewAnalyticsService(catalog, logger)

	if err := ratingService.Restore(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to restore rating state: %w", err)
	}

	return &Services{
		Auth:           authService,
		Health:         healthService,
		RateLimit:      rateLimitService,
		EventBus:       eventBus,
		Catalog:        catalog,
		Metrics:        metrics,
		Search:         searchService,
		Preferences:    preferenceService,
		Recommendation: recommendationService,
		Ratings:        ratingService,
		Analytics:      analyticsService,
	}, nil
}
