package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/pkg/models"
)

const ratingStatsKey = "rating_stats"

// RatingStatStore persists the per-recipe (count, total) aggregates in a Redis
// hash so the in-memory aggregator can be restored at startup.
type RatingStatStore struct {
	redis  *redis.Client
	logger *logrus.Logger
}

func NewRatingStatStore(redis *redis.Client, logger *logrus.Logger) *RatingStatStore {
	return &RatingStatStore{redis: redis, logger: logger}
}

// LoadAll restores every persisted aggregate. Undecodable fields are skipped
// with a warning rather than failing the whole restore.
func (s *RatingStatStore) LoadAll(ctx context.Context) (map[int64]models.RatingStat, error) {
	fields, err := s.redis.HGetAll(ctx, ratingStatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rating stats: %w", err)
	}

	stats := make(map[int64]models.RatingStat, len(fields))
	for field, raw := range fields {
		recipeID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			s.logger.WithField("field", field).Warn("Skipping rating stat with invalid recipe id")
			continue
		}

		var stat models.RatingStat
		if err := json.Unmarshal([]byte(raw), &stat); err != nil {
			s.logger.WithError(err).WithField("recipe_id", recipeID).Warn("Skipping undecodable rating stat")
			continue
		}

		stats[recipeID] = stat
	}

	return stats, nil
}

// Save writes a single recipe's aggregate.
func (s *RatingStatStore) Save(ctx context.Context, recipeID int64, stat models.RatingStat) error {
	data, err := json.Marshal(stat)
	if err != nil {
		return fmt.Errorf("failed to encode rating stat for recipe %d: %w", recipeID, err)
	}

	if err := s.redis.HSet(ctx, ratingStatsKey, strconv.FormatInt(recipeID, 10), data).Err(); err != nil {
		return fmt.Errorf("failed to save rating stat for recipe %d: %w", recipeID, err)
	}

	return nil
}
