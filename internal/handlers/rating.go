package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/middleware"
	"github.com/sazonlabs/sazon/internal/services"
	"github.com/sazonlabs/sazon/internal/store"
	"github.com/sazonlabs/sazon/pkg/models"
)

type RatingHandler struct {
	logger    *logrus.Logger
	ratings   *services.RatingService
	validator *validator.Validate
}

func NewRatingHandler(logger *logrus.Logger, ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{
		logger:    logger,
		ratings:   ratings,
		validator: validator.New(),
	}
}

// Put submits or revises the caller's star rating. A second rating from the
// same user replaces the first.
func (h *RatingHandler) Put(c *gin.Context) {
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

	recipeID, ok := h.recipeID(c)
	if !ok {
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	err := h.ratings.Rate(c.Request.Context(), recipeID, userID, req.Stars, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_RATING",
					"message": "Rating must be between 1 and 5 stars",
				},
			})
		case errors.Is(err, store.ErrRecipeNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "RECIPE_NOT_FOUND",
					"message": "Recipe not found",
				},
			})
		default:
			h.logger.WithError(err).Error("Failed to record rating")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "RATING_FAILED",
					"message": "Failed to record rating",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, h.ratings.Aggregate(recipeID))
}

// Delete withdraws the caller's rating. Clearing when no rating exists is a
// no-op that still returns the current aggregate.
func (h *RatingHandler) Delete(c *gin.Context) {
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

	recipeID, ok := h.recipeID(c)
	if !ok {
		return
	}

	sessionID := uuid.Nil
	if sessionStr := c.Query("session_id"); sessionStr != "" {
		parsed, err := uuid.Parse(sessionStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_SESSION_ID",
					"message": "Invalid session ID format",
				},
			})
			return
		}
		sessionID = parsed
	}

	if err := h.ratings.Clear(c.Request.Context(), recipeID, userID, sessionID); err != nil {
		h.logger.WithError(err).Error("Failed to clear rating")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RATING_FAILED",
				"message": "Failed to clear rating",
			},
		})
		return
	}

	c.JSON(http.StatusOK, h.ratings.Aggregate(recipeID))
}

// Get returns the aggregate rating for a recipe.
func (h *RatingHandler) Get(c *gin.Context) {
	recipeID, ok := h.recipeID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.ratings.Aggregate(recipeID))
}

func (h *RatingHandler) recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_RECIPE_ID",
				"message": "Recipe ID must be a positive integer",
			},
		})
		return 0, false
	}
	return id, true
}
