package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/response"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/apperror"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/logger"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the generic 500 envelope pointing at fallbackContact.
func Recovery(fallbackContact string, audit *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			logger.Log.Error("Panic recovered",
				"panic", recovered,
				"path", c.Request.URL.Path,
				"request_id", c.GetString("RequestID"),
				"stack", string(debug.Stack()),
			)
			if audit != nil {
				audit.LogPanicRecovered(c.Request.Context(), c.ClientIP(), c.Request.UserAgent(),
					c.GetString("RequestID"), c.Request.URL.Path, recovered)
			}

			appErr := unexpectedError(fallbackContact, fmt.Sprint(recovered))
			response.Error(c, appErr.Code, appErr.Message, appErr.Errors, appErr.Debug)
			c.Abort()
		}()

		c.Next()
	}
}

// UnexpectedDebug is the debug block of the generic 500 response.
type UnexpectedDebug struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func unexpectedError(fallbackContact, detail string) *apperror.AppError {
	return apperror.New(http.StatusInternalServerError,
		"An unexpected error occurred. Please contact me directly at "+fallbackContact, nil).
		WithErrors(apperror.FieldError{Field: "server", Message: "Internal server error."}).
		WithDebug(UnexpectedDebug{Error: detail, Timestamp: time.Now().UTC()})
}
