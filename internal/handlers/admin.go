package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/services"
)

// AdminHandler exposes catalog-level rating analytics for the admin panel.
type AdminHandler struct {
	logger    *logrus.Logger
	analytics *services.AnalyticsService
}

func NewAdminHandler(logger *logrus.Logger, analytics *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		logger:    logger,
		analytics: analytics,
	}
}

func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute catalog overview")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "ANALYTICS_FAILED",
				"message": "Failed to compute catalog overview",
			},
		})
		return
	}

	c.JSON(http.StatusOK, overview)
}
