package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/services"
	"github.com/sazonlabs/sazon/internal/validation"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Search         *SearchHandler
	Recommendation *RecommendationHandler
	Interaction    *InteractionHandler
	Rating         *RatingHandler
	Recipe         *RecipeHandler
	Admin          *AdminHandler
}

func New(logger *logrus.Logger, services *services.Services) (*Handlers, error) {
	recipeValidator, err := validation.NewRecipeValidator()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Auth:           NewAuthHandler(logger, services.Auth),
		Search:         NewSearchHandler(logger, services.Search, services.Catalog),
		Recommendation: NewRecommendationHandler(logger, services.Recommendation, services.Preferences, services.Catalog),
		Interaction:    NewInteractionHandler(logger, services.Preferences),
		Rating:         NewRatingHandler(logger, services.Ratings),
		Recipe:         NewRecipeHandler(logger, services.Catalog, recipeValidator),
		Admin:          NewAdminHandler(logger, services.Analytics),
	}, nil
}
