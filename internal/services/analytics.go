package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/sazonlabs/sazon/pkg/models"
)

// RecipeLister is the catalog listing the analytics service reads.
type RecipeLister interface {
	ListActive(ctx context.Context) ([]models.Recipe, error)
}

// CatalogAnalytics summarizes the displayed rating distribution for the admin
// overview.
type CatalogAnalytics struct {
	TotalRecipes    int             `json:"total_recipes"`
	RatedRecipes    int             `json:"rated_recipes"`
	MeanRating      float64         `json:"mean_rating"`
	StdDevRating    float64         `json:"stddev_rating"`
	MedianRating    float64         `json:"median_rating"`
	RatingHistogram map[string]int  `json:"rating_histogram"`
	TopCategories   []CategoryTally `json:"top_categories"`
}

type CategoryTally struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// AnalyticsService computes catalog-level statistics for the admin surface.
type AnalyticsService struct {
	catalog RecipeLister
	logger  *logrus.Logger
}

func NewAnalyticsService(catalog RecipeLister, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{catalog: catalog, logger: logger}
}

// Overview aggregates the rating distribution over the active catalog.
func (s *AnalyticsService) Overview(ctx context.Context) (*CatalogAnalytics, error) {
	recipes, err := s.catalog.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	overview := &CatalogAnalytics{
		TotalRecipes:    len(recipes),
		RatingHistogram: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}

	var ratings []float64
	categories := make(map[string]int)
	for _, recipe := range recipes {
		for _, category := range recipe.Categories {
			categories[category]++
		}
		if recipe.ReviewCount == 0 {
			continue
		}
		ratings = append(ratings, recipe.Rating)

		bucket := int(recipe.Rating + 0.5)
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		overview.RatingHistogram[string(rune('0'+bucket))]++
	}

	overview.RatedRecipes = len(ratings)
	if len(ratings) > 0 {
		overview.MeanRating = stat.Mean(ratings, nil)
		if len(ratings) > 1 {
			overview.StdDevRating = stat.StdDev(ratings, nil)
		}
		sorted := make([]float64, len(ratings))
		copy(sorted, ratings)
		sort.Float64s(sorted)
		overview.MedianRating = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}

	for category, count := range categories {
		overview.TopCategories = append(overview.TopCategories, CategoryTally{Category: category, Count: count})
	}
	sort.Slice(overview.TopCategories, func(i, j int) bool {
		if overview.TopCategories[i].Count != overview.TopCategories[j].Count {
			return overview.TopCategories[i].Count > overview.TopCategories[j].Count
		}
		return overview.TopCategories[i].Category < overview.TopCategories[j].Category
	})
	if len(overview.TopCategories) > 10 {
		overview.TopCategories = overview.TopCategories[:10]
	}

	return overview, nil
}
