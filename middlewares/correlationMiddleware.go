package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ucond/ucond_backend/utils"
)

const CorrelationHeader = "X-Correlation-ID"

// CorrelationMiddleware tags every request with the caller's correlation id, or a new
// one, and echoes it back.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(CorrelationHeader, id)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), id))
		c.Next()
	}
}
