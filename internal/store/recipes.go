// Package store holds the persistence collaborators: the Postgres-backed
// recipe catalog and the Redis-backed user profile and rating aggregate state.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/pkg/models"
)

// ErrRecipeNotFound is returned when an operation references a recipe id that
// is not in the catalog.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeQuerier is the subset of pgxpool.Pool used by the recipe store,
// narrowed so tests can substitute pgxmock.
type RecipeQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// RecipeStore is the read API over the recipe catalog plus the ingestion
// upsert used by the external admin panel's sync calls.
type RecipeStore struct {
	db     RecipeQuerier
	logger *logrus.Logger
}

func NewRecipeStore(db RecipeQuerier, logger *logrus.Logger) *RecipeStore {
	return &RecipeStore{db: db, logger: logger}
}

const recipeColumns = `id, name, country, categories, image_url, rating, review_count, active, created_at, updated_at`

// ListActive returns all active catalog entries in stable catalog order.
func (s *RecipeStore) ListActive(ctx context.Context) ([]models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE active = true ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	return recipes, rows.Err()
}

// Get returns a single recipe or ErrRecipeNotFound.
func (s *RecipeStore) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`

	recipe, err := scanRecipe(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}

	return &recipe, nil
}

// Upsert inserts or refreshes a catalog entry from an ingestion payload.
// Rating and review_count are not touched here; they belong to the aggregate.
func (s *RecipeStore) Upsert(ctx context.Context, req *models.RecipeIngestionRequest) error {
	query := `
		INSERT INTO recipes (id, name, country, categories, image_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			categories = EXCLUDED.categories,
			image_url = EXCLUDED.image_url,
			active = true,
			updated_at = NOW()`

	if _, err := s.db.Exec(ctx, query, req.ID, req.Name, req.Country, req.Categories, req.ImageURL); err != nil {
		return fmt.Errorf("failed to upsert recipe %d: %w", req.ID, err)
	}

	return nil
}

// UpdateRatingSummary writes the derived rating columns after an aggregate
// mutation so catalog reads stay consistent with the aggregator.
func (s *RecipeStore) UpdateRatingSummary(ctx context.Context, id int64, count int, mean float64) error {
	query := `UPDATE recipes SET rating = $2, review_count = $3, updated_at = NOW() WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, mean, count)
	if err != nil {
		return fmt.Errorf("failed to update rating summary for recipe %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var r models.Recipe
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Country,
		&r.Categories,
		&r.ImageURL,
		&r.Rating,
		&r.ReviewCount,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
