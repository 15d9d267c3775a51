package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/pkg/models"
)

const (
	catalogListKey = "catalog:active"
	catalogItemKey = "catalog:recipe:%d"
)

// CachedRecipeStore is a warm-tier read-through cache in front of the recipe
// store. Rating mutations and ingestion invalidate it so derived rating
// columns never go stale for longer than a write round-trip.
type CachedRecipeStore struct {
	inner  *RecipeStore
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedRecipeStore(inner *RecipeStore, redis *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedRecipeStore {
	return &CachedRecipeStore{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *CachedRecipeStore) ListActive(ctx context.Context) ([]models.Recipe, error) {
	if data, err := s.redis.Get(ctx, catalogListKey).Bytes(); err == nil {
		var recipes []models.Recipe
		if err := json.Unmarshal(data, &recipes); err == nil {
			return recipes, nil
		}
		s.logger.Warn("Discarding undecodable catalog list cache entry")
	}

	recipes, err := s.inner.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recipes); err == nil {
		if err := s.redis.Set(ctx, catalogListKey, data, s.ttl).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to cache catalog list")
		}
	}

	return recipes, nil
}

func (s *CachedRecipeStore) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	key := fmt.Sprintf(catalogItemKey, id)

	if data, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var recipe models.Recipe
		if err := json.Unmarshal(data, &recipe); err == nil {
			return &recipe, nil
		}
	}

	recipe, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recipe); err == nil {
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.WithError(err).WithField("recipe_id", id).Warn("Failed to cache recipe")
		}
	}

	return recipe, nil
}

func (s *CachedRecipeStore) Upsert(ctx context.Context, req *models.RecipeIngestionRequest) error {
	if err := s.inner.Upsert(ctx, req); err != nil {
		return err
	}
	s.invalidate(ctx, req.ID)
	return nil
}

func (s *CachedRecipeStore) UpdateRatingSummary(ctx context.Context, id int64, count int, mean float64) error {
	if err := s.inner.UpdateRatingSummary(ctx, id, count, mean); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedRecipeStore) invalidate(ctx context.Context, id int64) {
	if err := s.redis.Del(ctx, catalogListKey, fmt.Sprintf(catalogItemKey, id)).Err(); err != nil {
		s.logger.WithError(err).WithField("recipe_id", id).Warn("Failed to invalidate catalog cache")
	}
}
