package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/services"
)

type HealthHandler struct {
	logger        *logrus.Logger
	healthService *services.HealthService
}

func NewHealthHandler(logger *logrus.Logger, healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		logger:        logger,
		healthService: healthService,
	}
}

// Check reports dependency health for Postgres (catalog), the hot Redis tier
// (profiles, ratings, sessions) and the warm catalog cache. A degraded status
// still answers 200: search and recommendations keep serving without the warm
// cache, only slower.
func (h *HealthHandler) Check(c *gin.Context) {
	status := h.healthService.CheckHealth()

	httpStatus := http.StatusOK
	if status.Status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
		h.logger.WithField("critical_failures", status.Critical).Error("Health check failed")
	}

	c.JSON(httpStatus, status)
}
