package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

// LoggerMiddleware logs the errors handlers attached to the context and every response
// with a 5xx status.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if len(c.Errors) == 0 && status < http.StatusInternalServerError {
			return
		}
		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   status,
			"duration": time.Since(start).String(),
		}
		if id, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
			fields["correlation_id"] = id
		}
		entry := config.GetLogger().WithFields(fields)
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Error("request failed")
	}
}
