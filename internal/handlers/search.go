package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/services"
)

type SearchHandler struct {
	logger        *logrus.Logger
	searchService *services.FuzzySearchService
	catalog       services.RecipeLister
}

func NewSearchHandler(logger *logrus.Logger, searchService *services.FuzzySearchService, catalog services.RecipeLister) *SearchHandler {
	return &SearchHandler{
		logger:        logger,
		searchService: searchService,
		catalog:       catalog,
	}
}

// Search ranks the active catalog against the q parameter. mode=suggest caps
// the result list for the autosuggest dropdown; mode=full returns every
// qualifying hit. Rankings are recomputed on every call.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")

	mode := services.SearchModeFull
	switch c.DefaultQuery("mode", "full") {
	case "full":
		mode = services.SearchModeFull
	case "suggest":
		mode = services.SearchModeSuggest
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_MODE",
				"message": "mode must be 'full' or 'suggest'",
			},
		})
		return
	}

	recipes, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog for search")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "CATALOG_UNAVAILABLE",
				"message": "Failed to load recipe catalog",
			},
		})
		return
	}

	// The ranking carries its own scores, positions and algorithm label; the
	// handler only serializes them.
	results := h.searchService.Search(recipes, query, mode)

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"mode":    string(mode),
		"count":   len(results),
		"results": results,
	})
}
