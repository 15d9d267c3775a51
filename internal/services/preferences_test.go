package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sazonlabs/sazon/internal/store"
	"github.com/sazonlabs/sazon/pkg/models"
)

// fakeCatalog is an in-memory RatingCatalog/RecipeGetter fixture.
type fakeCatalog struct {
	mu      sync.Mutex
	recipes map[int64]models.Recipe
	updates map[int64]models.RatingSummary
}

func newFakeCatalog(recipes ...models.Recipe) *fakeCatalog {
	c := &fakeCatalog{
		recipes: make(map[int64]models.Recipe),
		updates: make(map[int64]models.RatingSummary),
	}
	for _, r := range recipes {
		c.recipes[r.ID] = r
	}
	return c
}

func (c *fakeCatalog) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recipe, ok := c.recipes[id]
	if !ok {
		return nil, store.ErrRecipeNotFound
	}
	return &recipe, nil
}

func (c *fakeCatalog) UpdateRatingSummary(ctx context.Context, id int64, count int, mean float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.recipes[id]; !ok {
		return store.ErrRecipeNotFound
	}
	c.updates[id] = models.RatingSummary{RecipeID: id, Count: count, Mean: mean}
	return nil
}

// fakeProfileRepo is an in-memory ProfileRepository fixture.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.UserProfile)}
}

func (r *fakeProfileRepo) Load(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.profiles[userID]; ok {
		return profile, nil
	}
	return models.NewUserProfile(userID), nil
}

func (r *fakeProfileRepo) Save(ctx context.Context, profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}

func newTestPreferenceService(catalog *fakeCatalog) *PreferenceService {
	return NewPreferenceService(catalog, newFakeProfileRepo(), nil, testRecommendationConfig(), testLogger(), nil)
}

func TestRecordFavorite(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{
		ID: 1, Name: "Tacos al Pastor", Country: "Mexico", Categories: []string{"mexican", "pork"},
	})
	svc := newTestPreferenceService(catalog)
	userID := uuid.New()

	require.NoError(t, svc.RecordFavorite(ctx, userID, 1, true, uuid.New()))

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.True(t, profile.Favorites[1])
	assert.Equal(t, 1.0, profile.Preferences.FavoriteCategories["mexican"])
	assert.Equal(t, 1.0, profile.Preferences.FavoriteCategories["pork"])
	assert.Equal(t, 1.0, profile.Preferences.FavoriteCountries["Mexico"])

	t.Run("unfavorite removes only the set entry", func(t *testing.T) {
		require.NoError(t, svc.RecordFavorite(ctx, userID, 1, false, uuid.New()))

		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.False(t, profile.Favorites[1])
		assert.Equal(t, 1.0, profile.Preferences.FavoriteCategories["mexican"],
			"accumulated weights survive an unfavorite")
	})

	t.Run("unknown recipe is a silent no-op", func(t *testing.T) {
		require.NoError(t, svc.RecordFavorite(ctx, userID, 999, true, uuid.New()))

		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.False(t, profile.Favorites[999])
	})
}

func TestRecordView(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{
		ID: 5, Name: "Carnitas", Country: "Mexico", Categories: []string{"mexican"},
	})
	svc := newTestPreferenceService(catalog)
	userID := uuid.New()

	require.NoError(t, svc.RecordView(ctx, userID, 5, uuid.New()))
	require.NoError(t, svc.RecordView(ctx, userID, 5, uuid.New()))

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 5}, profile.Preferences.ViewHistory)
	assert.InDelta(t, 0.6, profile.Preferences.FavoriteCategories["mexican"], 1e-9,
		"two views at the view signal weight")
	assert.InDelta(t, 0.6, profile.Preferences.FavoriteCountries["Mexico"], 1e-9)

	t.Run("unknown recipe is a silent no-op", func(t *testing.T) {
		require.NoError(t, svc.RecordView(ctx, userID, 404, uuid.New()))

		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, profile.Preferences.ViewHistory, 2)
	})
}

func TestRecordView_HistoryCapEvictsOldest(t *testing.T) {
	ctx := context.Background()

	var recipes []models.Recipe
	for i := int64(1); i <= models.MaxViewHistory+5; i++ {
		recipes = append(recipes, models.Recipe{ID: i, Name: fmt.Sprintf("Recipe %d", i)})
	}
	svc := newTestPreferenceService(newFakeCatalog(recipes...))
	userID := uuid.New()

	for i := int64(1); i <= models.MaxViewHistory+5; i++ {
		require.NoError(t, svc.RecordView(ctx, userID, i, uuid.New()))
	}

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)

	history := profile.Preferences.ViewHistory
	require.Len(t, history, models.MaxViewHistory)
	assert.Equal(t, int64(models.MaxViewHistory+5), history[0], "most recent first")
	assert.Equal(t, int64(6), history[len(history)-1], "oldest five evicted")
}

func TestRecordSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestPreferenceService(newFakeCatalog())
	userID := uuid.New()

	require.NoError(t, svc.RecordSearch(ctx, userID, "  Tacos ", uuid.New()))
	require.NoError(t, svc.RecordSearch(ctx, userID, "México", uuid.New()))

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"mexico", "tacos"}, profile.Preferences.SearchHistory,
		"normalized, most recent first")

	t.Run("queries under two runes are ignored", func(t *testing.T) {
		require.NoError(t, svc.RecordSearch(ctx, userID, "t", uuid.New()))
		require.NoError(t, svc.RecordSearch(ctx, userID, " ", uuid.New()))

		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, profile.Preferences.SearchHistory, 2)
	})

	t.Run("history caps at the limit", func(t *testing.T) {
		for i := 0; i < models.MaxSearchHistory+10; i++ {
			require.NoError(t, svc.RecordSearch(ctx, userID, fmt.Sprintf("query %d", i), uuid.New()))
		}

		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, profile.Preferences.SearchHistory, models.MaxSearchHistory)
	})
}

func TestProfile_ReturnsIsolatedSnapshot(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{
		ID: 1, Name: "Carnitas", Country: "Mexico", Categories: []string{"mexican"},
	})
	svc := newTestPreferenceService(catalog)
	userID := uuid.New()

	before, err := svc.Profile(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordView(ctx, userID, 1, uuid.New()))

	assert.Empty(t, before.Preferences.ViewHistory,
		"a snapshot taken earlier does not see later mutations")

	after, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, after.Preferences.ViewHistory)

	t.Run("writes to a snapshot never reach the service", func(t *testing.T) {
		after.Favorites[99] = true
		after.Preferences.FavoriteCategories["thai"] = 7

		fresh, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.False(t, fresh.Favorites[99])
		assert.NotContains(t, fresh.Preferences.FavoriteCategories, "thai")
	})
}

// Interactions mutate the canonical profile while recommendation requests
// read snapshots of it; both sides must be safe to run concurrently.
func TestConcurrentInteractionsAndRecommendations(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(
		models.Recipe{ID: 1, Name: "Tacos al Pastor", Country: "Mexico", Categories: []string{"mexican"}, Rating: 4.2},
		models.Recipe{ID: 2, Name: "Carnitas", Country: "Mexico", Categories: []string{"mexican"}, Rating: 4.8},
		models.Recipe{ID: 3, Name: "Pad Thai", Country: "Thailand", Categories: []string{"thai"}, Rating: 4.6},
	)
	svc := newTestPreferenceService(catalog)
	recSvc := NewRecommendationService(testRecommendationConfig(), testLogger(), nil)
	userID := uuid.New()

	recipes := []models.Recipe{
		{ID: 1, Name: "Tacos al Pastor", Country: "Mexico", Categories: []string{"mexican"}, Rating: 4.2},
		{ID: 2, Name: "Carnitas", Country: "Mexico", Categories: []string{"mexican"}, Rating: 4.8},
		{ID: 3, Name: "Pad Thai", Country: "Thailand", Categories: []string{"thai"}, Rating: 4.6},
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, svc.RecordView(ctx, userID, int64(i%3+1), uuid.New()))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, svc.RecordSearch(ctx, userID, "tacos", uuid.New()))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			profile, err := svc.Profile(ctx, userID)
			if !assert.NoError(t, err) {
				return
			}
			recSvc.Recommend(recipes, profile, RecommendModeAll)
		}
	}()

	wg.Wait()

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, profile.Preferences.ViewHistory, models.MaxViewHistory)
	assert.Len(t, profile.Preferences.SearchHistory, models.MaxSearchHistory)
}
