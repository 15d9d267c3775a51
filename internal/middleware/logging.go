package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger emits one structured line per request. The authenticated user id is
// attached when the auth middleware has run, so per-user personalization
// traffic (searches, interactions, recommendation fetches) can be traced.
func Logger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"status_code": c.Writer.Status(),
			"latency":     time.Since(start),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields["query"] = query
		}
		if userID := UserID(c); userID != uuid.Nil {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		logger.WithFields(fields).Info("HTTP request")
	}
}

// Recovery converts panics into the standard error envelope. A panic must
// never take down the ranking loop for other users.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		fields := logrus.Fields{
			"panic":     recovered,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"client_ip": c.ClientIP(),
		}
		if userID := UserID(c); userID != uuid.Nil {
			fields["user_id"] = userID
		}
		logger.WithFields(fields).Error("Panic recovered")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": "Internal server error",
			},
		})
	})
}
