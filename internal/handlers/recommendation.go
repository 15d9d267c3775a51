package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/middleware"
	"github.com/sazonlabs/sazon/internal/services"
)

type RecommendationHandler struct {
	logger         *logrus.Logger
	recommendation *services.RecommendationService
	preferences    *services.PreferenceService
	catalog        services.RecipeLister
}

func NewRecommendationHandler(
	logger *logrus.Logger,
	recommendation *services.RecommendationService,
	preferences *services.PreferenceService,
	catalog services.RecipeLister,
) *RecommendationHandler {
	return &RecommendationHandler{
		logger:         logger,
		recommendation: recommendation,
		preferences:    preferences,
		catalog:        catalog,
	}
}

// Get ranks the active catalog for the authenticated user. mode=all ranks the
// whole catalog (home feed); mode=subset applies the stricter cold-start gate
// used for the curated "recommended for you" strip.
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "MISSING_USER_CONTEXT",
				"message": "Authenticated user required",
			},
		})
		return
	}

	mode := services.RecommendModeAll
	switch c.DefaultQuery("mode", "all") {
	case "all":
		mode = services.RecommendModeAll
	case "subset":
		mode = services.RecommendModeSubset
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_MODE",
				"message": "mode must be 'all' or 'subset'",
			},
		})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}

	recipes, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog for recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "CATALOG_UNAVAILABLE",
				"message": "Failed to load recipe catalog",
			},
		})
		return
	}

	profile, err := h.preferences.Profile(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load user profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PROFILE_UNAVAILABLE",
				"message": "Failed to load user profile",
			},
		})
		return
	}

	results := h.recommendation.Recommend(recipes, profile, mode)
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	algorithm := "rating_fallback"
	if len(results) > 0 {
		algorithm = results[0].Algorithm
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"mode":      string(mode),
		"algorithm": algorithm,
		"count":     len(results),
		"results":   results,
	})
}
