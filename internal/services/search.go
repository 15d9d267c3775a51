package services

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/internal/textmatch"
	"github.com/sazonlabs/sazon/pkg/models"
)

// SearchMode selects between the full results view and the autosuggest
// dropdown, which caps the hit list.
type SearchMode string

const (
	SearchModeFull    SearchMode = "full"
	SearchModeSuggest SearchMode = "suggest"
)

// FuzzySearchService ranks catalog entries against a typed query using edit
// distance with substring and prefix boosts. It holds no index state; every
// call rescores the candidate set.
type FuzzySearchService struct {
	config  *config.SearchConfig
	logger  *logrus.Logger
	metrics *MetricsCollector
}

func NewFuzzySearchService(cfg *config.SearchConfig, logger *logrus.Logger, metrics *MetricsCollector) *FuzzySearchService {
	return &FuzzySearchService{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// ScoreRecipe scores a query against a recipe's searchable fields (name,
// country, joined categories) and returns the best field score in [0,1].
func (s *FuzzySearchService) ScoreRecipe(recipe models.Recipe, query string) float64 {
	q := textmatch.Normalize(query)
	if q == "" {
		return 0
	}

	fields := []string{
		recipe.Name,
		recipe.Country,
		strings.Join(recipe.Categories, " "),
	}

	best := 0.0
	for _, field := range fields {
		if score := s.fieldScore(field, q); score > best {
			best = score
		}
	}

	return best
}

// fieldScore implements the per-field rules: a substring hit scores by how
// early it starts (floored at the substring floor); otherwise the best of the
// per-token similarities (with a prefix bonus) and the whole-field similarity.
func (s *FuzzySearchService) fieldScore(field, normalizedQuery string) float64 {
	f := textmatch.Normalize(field)
	if f == "" {
		return 0
	}

	if idx := strings.Index(f, normalizedQuery); idx >= 0 {
		position := utf8.RuneCountInString(f[:idx])
		length := utf8.RuneCountInString(f)
		score := 1.0 - float64(position)/float64(length)
		if score < s.config.SubstringScoreFloor {
			score = s.config.SubstringScoreFloor
		}
		return score
	}

	best := 0.0
	for _, token := range strings.Fields(f) {
		sim := textmatch.Similarity(token, normalizedQuery)
		if strings.HasPrefix(token, normalizedQuery) {
			sim += s.config.PrefixBonus
			if sim > 1.0 {
				sim = 1.0
			}
		}
		if sim > best {
			best = sim
		}
	}

	if whole := textmatch.Similarity(f, normalizedQuery); whole > best {
		best = whole
	}

	return best
}

// Search scores every candidate, drops hits below the relevance floor and
// returns the survivors with their scores in descending score order (stable,
// so ties keep catalog order). Suggest mode caps the hit list. An empty or
// whitespace-only query short-circuits to the unpersonalized rating ordering,
// with the displayed rating standing in as the score.
func (s *FuzzySearchService) Search(recipes []models.Recipe, query string, mode SearchMode) []models.ScoredRecipe {
	start := time.Now()

	q := textmatch.Normalize(query)
	if q == "" {
		ranked := SortByRating(recipes)
		results := make([]models.ScoredRecipe, len(ranked))
		for i, recipe := range ranked {
			results[i] = models.ScoredRecipe{
				Recipe:    recipe,
				Score:     recipe.Rating,
				Algorithm: "rating_fallback",
				Position:  i + 1,
			}
		}
		return results
	}

	// The dropdown stays closed until the query carries enough signal.
	if mode == SearchModeSuggest && utf8.RuneCountInString(q) < s.config.MinQueryLength {
		return nil
	}

	hits := make([]models.ScoredRecipe, 0, len(recipes))
	for _, recipe := range recipes {
		score := s.ScoreRecipe(recipe, q)
		if score >= s.config.RelevanceFloor {
			hits = append(hits, models.ScoredRecipe{Recipe: recipe, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if mode == SearchModeSuggest && len(hits) > s.config.SuggestLimit {
		hits = hits[:s.config.SuggestLimit]
	}

	for i := range hits {
		hits[i].Algorithm = "fuzzy_match"
		hits[i].Position = i + 1
	}

	if s.metrics != nil {
		s.metrics.ObserveSearch(string(mode), time.Since(start))
	}

	s.logger.WithFields(logrus.Fields{
		"query":      q,
		"mode":       mode,
		"candidates": len(recipes),
		"hits":       len(hits),
	}).Debug("Fuzzy search completed")

	return hits
}

// SortByRating returns a copy of the catalog sorted by raw displayed rating
// descending (stable, catalog order preserved for ties). This is the
// cold-start and empty-query ordering.
func SortByRating(recipes []models.Recipe) []models.Recipe {
	sorted := make([]models.Recipe, len(recipes))
	copy(sorted, recipes)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	return sorted
}
