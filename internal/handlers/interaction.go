package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/middleware"
	"github.com/sazonlabs/sazon/internal/services"
	"github.com/sazonlabs/sazon/pkg/models"
)

// InteractionHandler accepts the UI events that feed personalization:
// favorite toggles, recipe views and submitted searches. The in-memory
// profile is updated synchronously; persistence and event publication happen
// in the background.
type InteractionHandler struct {
	logger      *logrus.Logger
	preferences *services.PreferenceService
	validator   *validator.Validate
}

func NewInteractionHandler(logger *logrus.Logger, preferences *services.PreferenceService) *InteractionHandler {
	return &InteractionHandler{
		logger:      logger,
		preferences: preferences,
		validator:   validator.New(),
	}
}

func (h *InteractionHandler) Favorite(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req models.FavoriteRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.preferences.RecordFavorite(c.Request.Context(), userID, req.RecipeID, req.Favorite, req.SessionID); err != nil {
		h.logger.WithError(err).Error("Failed to record favorite")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_FAILED",
				"message": "Failed to record favorite",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Favorite recorded"})
}

func (h *InteractionHandler) View(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req models.ViewRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.preferences.RecordView(c.Request.Context(), userID, req.RecipeID, req.SessionID); err != nil {
		h.logger.WithError(err).Error("Failed to record view")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_FAILED",
				"message": "Failed to record view",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "View recorded"})
}

func (h *InteractionHandler) Search(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req models.SearchEventRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.preferences.RecordSearch(c.Request.Context(), userID, req.Query, req.SessionID); err != nil {
		h.logger.WithError(err).Error("Failed to record search")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_FAILED",
				"message": "Failed to record search",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Search recorded"})
}

func (h *InteractionHandler) requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "MISSING_USER_CONTEXT",
				"message": "Authenticated user required",
			},
		})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *InteractionHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return false
	}

	return true
}
