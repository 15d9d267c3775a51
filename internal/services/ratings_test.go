package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sazonlabs/sazon/internal/store"
	"github.com/sazonlabs/sazon/pkg/models"
)

// fakeStatRepo is an in-memory RatingStatRepository fixture.
type fakeStatRepo struct {
	mu    sync.Mutex
	stats map[int64]models.RatingStat
}

func newFakeStatRepo() *fakeStatRepo {
	return &fakeStatRepo{stats: make(map[int64]models.RatingStat)}
}

func (r *fakeStatRepo) LoadAll(ctx context.Context) (map[int64]models.RatingStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]models.RatingStat, len(r.stats))
	for id, stat := range r.stats {
		out[id] = stat
	}
	return out, nil
}

func (r *fakeStatRepo) Save(ctx context.Context, recipeID int64, stat models.RatingStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[recipeID] = stat
	return nil
}

func newTestRatingService(catalog *fakeCatalog) (*RatingService, *PreferenceService) {
	prefs := newTestPreferenceService(catalog)
	ratings := NewRatingService(catalog, prefs, newFakeStatRepo(), nil, testLogger(), nil)
	return ratings, prefs
}

func TestRate(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{ID: 1, Name: "Goulash"})
	svc, _ := newTestRatingService(catalog)
	userID := uuid.New()

	require.NoError(t, svc.Rate(ctx, 1, userID, 4, uuid.New()))

	summary := svc.Aggregate(1)
	assert.Equal(t, 1, summary.Count)
	assert.InDelta(t, 4.0, summary.Mean, 1e-9)

	t.Run("re-rating replaces instead of adding", func(t *testing.T) {
		require.NoError(t, svc.Rate(ctx, 1, userID, 5, uuid.New()))

		summary := svc.Aggregate(1)
		assert.Equal(t, 1, summary.Count)
		assert.InDelta(t, 5.0, summary.Mean, 1e-9)
	})

	t.Run("a second user adds to the aggregate", func(t *testing.T) {
		require.NoError(t, svc.Rate(ctx, 1, uuid.New(), 3, uuid.New()))

		summary := svc.Aggregate(1)
		assert.Equal(t, 2, summary.Count)
		assert.InDelta(t, 4.0, summary.Mean, 1e-9)
	})
}

func TestRate_Validation(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{ID: 1, Name: "Goulash"})
	svc, _ := newTestRatingService(catalog)

	t.Run("stars outside 1..5 are rejected, never clamped", func(t *testing.T) {
		for _, stars := range []int{0, -1, 6, 100} {
			err := svc.Rate(ctx, 1, uuid.New(), stars, uuid.New())
			assert.ErrorIs(t, err, ErrInvalidRating, "stars=%d", stars)
		}
		assert.Equal(t, 0, svc.Aggregate(1).Count)
	})

	t.Run("unknown recipe surfaces not-found", func(t *testing.T) {
		err := svc.Rate(ctx, 999, uuid.New(), 4, uuid.New())
		assert.ErrorIs(t, err, store.ErrRecipeNotFound)
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{ID: 1, Name: "Goulash"})
	svc, prefs := newTestRatingService(catalog)
	userID := uuid.New()

	t.Run("clearing without a prior rating is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Clear(ctx, 1, userID, uuid.New()))
		assert.Equal(t, 0, svc.Aggregate(1).Count)
	})

	t.Run("clearing the only rating resets the aggregate", func(t *testing.T) {
		require.NoError(t, svc.Rate(ctx, 1, userID, 4, uuid.New()))
		require.NoError(t, svc.Clear(ctx, 1, userID, uuid.New()))

		summary := svc.Aggregate(1)
		assert.Equal(t, 0, summary.Count)
		assert.InDelta(t, 0.0, summary.Mean, 1e-9)

		profile, err := prefs.Profile(ctx, userID)
		require.NoError(t, err)
		_, rated := profile.PersonalRatings[1]
		assert.False(t, rated)
	})

	t.Run("clearing one of two ratings keeps the other exact", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, svc.Rate(ctx, 1, userID, 2, uuid.New()))
		require.NoError(t, svc.Rate(ctx, 1, other, 5, uuid.New()))
		require.NoError(t, svc.Clear(ctx, 1, userID, uuid.New()))

		summary := svc.Aggregate(1)
		assert.Equal(t, 1, summary.Count)
		assert.InDelta(t, 5.0, summary.Mean, 1e-9)
	})

	t.Run("clearing twice stays at the floor", func(t *testing.T) {
		require.NoError(t, svc.Clear(ctx, 1, uuid.New(), uuid.New()))
		summary := svc.Aggregate(1)
		assert.Equal(t, 1, summary.Count, "no-op for a user without a rating")
	})
}

// Ratings mutate the stored personal stars while recommendation requests
// snapshot the same profile; re-rating must stay a replace under concurrency.
func TestRate_ConcurrentWithProfileReads(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(models.Recipe{ID: 1, Name: "Goulash"})
	svc, prefs := newTestRatingService(catalog)
	userID := uuid.New()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, svc.Rate(ctx, 1, userID, i%5+1, uuid.New()))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := prefs.Profile(ctx, userID)
			assert.NoError(t, err)
		}
	}()

	wg.Wait()

	summary := svc.Aggregate(1)
	assert.Equal(t, 1, summary.Count, "one user re-rating keeps a single contribution")
	assert.GreaterOrEqual(t, summary.Mean, 1.0)
	assert.LessOrEqual(t, summary.Mean, 5.0)
}

func TestRestore(t *testing.T) {
	catalog := newFakeCatalog(models.Recipe{ID: 3, Name: "Pad Thai"})
	prefs := newTestPreferenceService(catalog)

	stats := newFakeStatRepo()
	require.NoError(t, stats.Save(context.Background(), 3, models.RatingStat{Count: 4, Total: 18}))

	svc := NewRatingService(catalog, prefs, stats, nil, testLogger(), nil)
	require.NoError(t, svc.Restore(context.Background()))

	summary := svc.Aggregate(3)
	assert.Equal(t, 4, summary.Count)
	assert.InDelta(t, 4.5, summary.Mean, 1e-9)
}

func TestAggregate_UnratedRecipeReadsZero(t *testing.T) {
	svc, _ := newTestRatingService(newFakeCatalog())

	summary := svc.Aggregate(77)
	assert.Equal(t, int64(77), summary.RecipeID)
	assert.Equal(t, 0, summary.Count)
	assert.InDelta(t, 0.0, summary.Mean, 1e-9)
}
