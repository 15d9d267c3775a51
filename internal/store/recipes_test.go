package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sazonlabs/sazon/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func recipeRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "country", "categories", "image_url",
		"rating", "review_count", "active", "created_at", "updated_at",
	})
}

func TestRecipeStore_ListActive(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	now := time.Now()
	rows := recipeRows().
		AddRow(int64(1), "Tacos al Pastor", "Mexico", []string{"mexican"}, nil, 4.7, 12, true, now, now).
		AddRow(int64(2), "Pad Thai", "Thailand", []string{"thai"}, nil, 4.5, 30, true, now, now)

	mockDB.ExpectQuery("SELECT").WillReturnRows(rows)

	store := NewRecipeStore(mockDB, testLogger())
	recipes, err := store.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, int64(1), recipes[0].ID)
	assert.Equal(t, "Tacos al Pastor", recipes[0].Name)
	assert.Equal(t, []string{"thai"}, recipes[1].Categories)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRecipeStore_Get(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	now := time.Now()
	rows := recipeRows().
		AddRow(int64(7), "Carnitas", "Mexico", []string{"mexican", "pork"}, nil, 4.2, 5, true, now, now)

	mockDB.ExpectQuery("SELECT").WithArgs(int64(7)).WillReturnRows(rows)

	store := NewRecipeStore(mockDB, testLogger())
	recipe, err := store.Get(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "Carnitas", recipe.Name)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRecipeStore_GetNotFound(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT").WithArgs(int64(99)).WillReturnRows(recipeRows())

	store := NewRecipeStore(mockDB, testLogger())
	_, err = store.Get(context.Background(), 99)

	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestRecipeStore_Upsert(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	req := &models.RecipeIngestionRequest{
		ID:         3,
		Name:       "Goulash",
		Country:    "Hungary",
		Categories: []string{"hungarian", "stew"},
	}

	mockDB.ExpectExec("INSERT INTO recipes").
		WithArgs(req.ID, req.Name, req.Country, req.Categories, req.ImageURL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewRecipeStore(mockDB, testLogger())
	require.NoError(t, store.Upsert(context.Background(), req))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRecipeStore_UpdateRatingSummary(t *testing.T) {
	t.Run("updates the derived columns", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		mockDB.ExpectExec("UPDATE recipes").
			WithArgs(int64(1), 4.5, 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		store := NewRecipeStore(mockDB, testLogger())
		require.NoError(t, store.UpdateRatingSummary(context.Background(), 1, 2, 4.5))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("unknown recipe reports not-found", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		mockDB.ExpectExec("UPDATE recipes").
			WithArgs(int64(99), 3.0, 1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		store := NewRecipeStore(mockDB, testLogger())
		err = store.UpdateRatingSummary(context.Background(), 99, 1, 3.0)
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})
}
