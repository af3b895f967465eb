package middleware

import (
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID, reusing a sane inbound X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set("RequestID", id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(security.ContextWithRequestID(c.Request.Context(), id))

		c.Next()
	}
}
