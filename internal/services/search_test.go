package services

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/pkg/models"
)

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{
		RelevanceFloor:      0.45,
		SubstringScoreFloor: 0.6,
		PrefixBonus:         0.15,
		SuggestLimit:        8,
		MinQueryLength:      2,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestSearchService() *FuzzySearchService {
	return NewFuzzySearchService(testSearchConfig(), testLogger(), nil)
}

func TestScoreRecipe_SubstringMatch(t *testing.T) {
	svc := newTestSearchService()
	recipe := models.Recipe{Name: "Tacos al Pastor", Country: "Mexico", Categories: []string{"mexican", "pork"}}

	t.Run("match at the start scores full", func(t *testing.T) {
		assert.InDelta(t, 1.0, svc.ScoreRecipe(recipe, "tacos"), 1e-9)
	})

	t.Run("late match floors at the substring minimum", func(t *testing.T) {
		// "pastor" starts at rune 9 of the 15-rune name: 1 - 9/15 = 0.4,
		// floored at 0.6.
		assert.InDelta(t, 0.6, svc.ScoreRecipe(recipe, "pastor"), 1e-9)
	})

	t.Run("diacritics fold before matching", func(t *testing.T) {
		assert.InDelta(t, 1.0, svc.ScoreRecipe(recipe, "México"), 1e-9)
	})
}

func TestScoreRecipe_FuzzyTokenMatch(t *testing.T) {
	svc := newTestSearchService()
	recipe := models.Recipe{Name: "Tacos al Pastor", Country: "Mexico", Categories: []string{"mexican"}}

	t.Run("single typo scores by token similarity", func(t *testing.T) {
		// "tacoz" vs token "tacos": distance 1 over 5 runes.
		assert.InDelta(t, 0.8, svc.ScoreRecipe(recipe, "tacoz"), 1e-9)
	})

	t.Run("unrelated query scores low", func(t *testing.T) {
		assert.Less(t, svc.ScoreRecipe(recipe, "sushi"), 0.45)
	})

	t.Run("bounded in [0,1]", func(t *testing.T) {
		for _, q := range []string{"", "t", "tacos", "tacoz", "zzzzzzzzzz", "tacos al pastor y mas"} {
			score := svc.ScoreRecipe(recipe, q)
			assert.GreaterOrEqual(t, score, 0.0, "query %q", q)
			assert.LessOrEqual(t, score, 1.0, "query %q", q)
		}
	})
}

func TestSearch_TypoToleratedRanking(t *testing.T) {
	svc := newTestSearchService()
	catalog := []models.Recipe{
		{ID: 1, Name: "Tacos al Pastor", Country: "Mexico", Categories: []string{"mexican"}, Rating: 4.2},
		{ID: 2, Name: "Carnitas", Country: "Mexico", Categories: []string{"mexican"}, Rating: 4.8},
		{ID: 3, Name: "Pad Thai", Country: "Thailand", Categories: []string{"thai"}, Rating: 4.6},
	}

	results := svc.Search(catalog, "tacoz", SearchModeFull)

	require.Len(t, results, 1, "only the typo-near recipe clears the relevance floor")
	assert.Equal(t, int64(1), results[0].Recipe.ID)
	assert.Equal(t, "fuzzy_match", results[0].Algorithm)
	assert.Equal(t, 1, results[0].Position)

	t.Run("returned score is the ranking score", func(t *testing.T) {
		assert.InDelta(t, svc.ScoreRecipe(catalog[0], "tacoz"), results[0].Score, 1e-9)
		assert.InDelta(t, 0.8, results[0].Score, 1e-9)
	})
}

func TestSearch_RelevanceFloorFiltersNoise(t *testing.T) {
	svc := newTestSearchService()
	catalog := []models.Recipe{
		{ID: 1, Name: "Pad Thai", Country: "Thailand"},
		{ID: 2, Name: "Goulash", Country: "Hungary"},
	}

	assert.Empty(t, svc.Search(catalog, "quesadilla", SearchModeFull))
}

func TestSearch_SuggestModeCapsResults(t *testing.T) {
	svc := newTestSearchService()

	var catalog []models.Recipe
	for i := 1; i <= 12; i++ {
		catalog = append(catalog, models.Recipe{ID: int64(i), Name: fmt.Sprintf("Taco Plate %d", i)})
	}

	suggestions := svc.Search(catalog, "taco", SearchModeSuggest)
	full := svc.Search(catalog, "taco", SearchModeFull)

	assert.Len(t, suggestions, 8)
	assert.Len(t, full, 12)

	t.Run("no suggestions below the minimum query length", func(t *testing.T) {
		assert.Empty(t, svc.Search(catalog, "t", SearchModeSuggest))
	})
}

func TestSearch_StableOrderForTies(t *testing.T) {
	svc := newTestSearchService()

	// All three match "taco" at position 0 and score identically; catalog
	// order must survive the sort.
	catalog := []models.Recipe{
		{ID: 7, Name: "Taco Verde"},
		{ID: 3, Name: "Taco Rojo"},
		{ID: 9, Name: "Taco Azul"},
	}

	results := svc.Search(catalog, "taco", SearchModeFull)

	require.Len(t, results, 3)
	assert.Equal(t, []int64{7, 3, 9}, []int64{results[0].Recipe.ID, results[1].Recipe.ID, results[2].Recipe.ID})
	assert.Equal(t, []int{1, 2, 3}, []int{results[0].Position, results[1].Position, results[2].Position})
}

func TestSearch_EmptyQueryFallsBackToRatingOrder(t *testing.T) {
	svc := newTestSearchService()
	catalog := []models.Recipe{
		{ID: 1, Name: "Pad Thai", Rating: 4.1},
		{ID: 2, Name: "Carnitas", Rating: 4.8},
		{ID: 3, Name: "Goulash", Rating: 4.5},
	}

	for _, query := range []string{"", "   ", "\t"} {
		results := svc.Search(catalog, query, SearchModeFull)
		require.Len(t, results, 3, "query %q", query)
		assert.Equal(t, int64(2), results[0].Recipe.ID)
		assert.Equal(t, int64(3), results[1].Recipe.ID)
		assert.Equal(t, int64(1), results[2].Recipe.ID)
		assert.Equal(t, "rating_fallback", results[0].Algorithm)
		assert.InDelta(t, 4.8, results[0].Score, 1e-9, "fallback scores by displayed rating")
	}
}

func TestSortByRating(t *testing.T) {
	catalog := []models.Recipe{
		{ID: 1, Rating: 4.0},
		{ID: 2, Rating: 4.8},
		{ID: 3, Rating: 4.0},
		{ID: 4, Rating: 4.5},
	}

	sorted := SortByRating(catalog)

	assert.Equal(t, []int64{2, 4, 1, 3}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID},
		"descending by rating, ties keep catalog order")

	// Input order is untouched
	assert.Equal(t, int64(1), catalog[0].ID)
}
