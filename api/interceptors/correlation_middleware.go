package interceptors

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderCorrelationID = "X-Correlation-Id"

// CorrelationMiddleware echoes the caller's correlation id or assigns a new one
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderCorrelationID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("correlationId", id)
		c.Writer.Header().Set(HeaderCorrelationID, id)
		c.Next()
	}
}
