package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/store"
	"github.com/sazonlabs/sazon/internal/validation"
	"github.com/sazonlabs/sazon/pkg/models"
)

// RecipeHandler ingests catalog entries pushed from the recipe management
// system. Payloads are schema-validated before they touch the database.
type RecipeHandler struct {
	logger          *logrus.Logger
	catalog         *store.CachedRecipeStore
	recipeValidator *validation.RecipeValidator
}

func NewRecipeHandler(logger *logrus.Logger, catalog *store.CachedRecipeStore, recipeValidator *validation.RecipeValidator) *RecipeHandler {
	return &RecipeHandler{
		logger:          logger,
		catalog:         catalog,
		recipeValidator: recipeValidator,
	}
}

func (h *RecipeHandler) Ingest(c *gin.Context) {
	var document map[string]interface{}
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if result := h.recipeValidator.ValidateRecipe(document); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "SCHEMA_VALIDATION_FAILED",
				"message": "Recipe payload failed schema validation",
				"details": result.Errors,
			},
		})
		return
	}

	raw, err := json.Marshal(document)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
			},
		})
		return
	}

	var req models.RecipeIngestionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.catalog.Upsert(c.Request.Context(), &req); err != nil {
		h.logger.WithError(err).WithField("recipe_id", req.ID).Error("Failed to upsert recipe")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INGESTION_FAILED",
				"message": "Failed to store recipe",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"recipe_id": req.ID,
		"message":   "Recipe ingested",
	})
}
