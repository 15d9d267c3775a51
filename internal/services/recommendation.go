package services

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/internal/textmatch"
	"github.com/sazonlabs/sazon/pkg/models"
)

// RecommendMode selects the cold-start gate: the full catalog view tolerates
// weaker signal than the curated "recommended" subset.
type RecommendMode string

const (
	RecommendModeAll    RecommendMode = "all"
	RecommendModeSubset RecommendMode = "subset"
)

// RecommendationService ranks the catalog for a user by combining the
// recipe's displayed rating with the user's accumulated preference signals.
// The scoring model is a fixed linear combination with multiplicative
// penalties for recently-viewed and already-favorited recipes; there is no
// learned component.
type RecommendationService struct {
	config  *config.RecommendationConfig
	logger  *logrus.Logger
	metrics *MetricsCollector
}

func NewRecommendationService(cfg *config.RecommendationConfig, logger *logrus.Logger, metrics *MetricsCollector) *RecommendationService {
	return &RecommendationService{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// ScoreOne computes the personalized score for a single recipe. Missing map
// entries contribute zero. The recently-viewed penalty applies before the
// favorited penalty; when both hold they compose multiplicatively.
func (s *RecommendationService) ScoreOne(recipe models.Recipe, prefs *models.UserPreferences, favorites map[int64]bool) float64 {
	score := recipe.Rating * s.config.RatingWeight

	categorySignal := 0.0
	for _, category := range recipe.Categories {
		categorySignal += prefs.FavoriteCategories[category]
	}
	score += categorySignal * s.config.CategoryWeight

	score += prefs.FavoriteCountries[recipe.Country] * s.config.CountryWeight

	searchable := textmatch.Normalize(recipe.Name + " " + recipe.Country + " " + strings.Join(recipe.Categories, " "))
	searchHits := 0
	for _, query := range prefs.SearchHistory {
		if strings.Contains(searchable, query) {
			searchHits++
		}
	}
	score += float64(searchHits) * s.config.SearchWeight

	if s.recentlyViewed(recipe.ID, prefs.ViewHistory) {
		score *= s.config.RecentViewPenalty
	}
	if favorites[recipe.ID] {
		score *= s.config.FavoritePenalty
	}

	return score
}

func (s *RecommendationService) recentlyViewed(recipeID int64, viewHistory []int64) bool {
	window := viewHistory
	if len(window) > s.config.RecentViewWindow {
		window = window[:s.config.RecentViewWindow]
	}
	for _, id := range window {
		if id == recipeID {
			return true
		}
	}
	return false
}

// Recommend ranks the catalog for the given profile. Users below the
// cold-start gate get the plain rating ordering, so a new user always sees a
// sensible non-empty list instead of an arbitrary personalized one.
func (s *RecommendationService) Recommend(recipes []models.Recipe, profile *models.UserProfile, mode RecommendMode) []models.ScoredRecipe {
	threshold := s.config.ColdStartAll
	if mode == RecommendModeSubset {
		threshold = s.config.ColdStartSubset
	}

	algorithm := "preference_weighted"
	results := make([]models.ScoredRecipe, len(recipes))

	if profile == nil || profile.Preferences.TotalSignalStrength() < threshold {
		algorithm = "rating_fallback"
		for i, recipe := range SortByRating(recipes) {
			results[i] = models.ScoredRecipe{Recipe: recipe, Score: recipe.Rating}
		}
	} else {
		for i, recipe := range recipes {
			results[i] = models.ScoredRecipe{
				Recipe: recipe,
				Score:  s.ScoreOne(recipe, profile.Preferences, profile.Favorites),
			}
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	for i := range results {
		results[i].Algorithm = algorithm
		results[i].Position = i + 1
	}

	if s.metrics != nil {
		s.metrics.CountRecommendation(algorithm)
	}

	s.logger.WithFields(logrus.Fields{
		"mode":      mode,
		"algorithm": algorithm,
		"results":   len(results),
	}).Debug("Recommendation ranking completed")

	return results
}
