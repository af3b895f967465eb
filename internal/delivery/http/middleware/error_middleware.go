package middleware

import (
	"errors"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/delivery/http/response"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/apperror"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler shapes errors attached with c.Error into the response envelope.
// Anything that is not an *apperror.AppError becomes the generic 500.
func ErrorHandler(fallbackContact string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			logger.Log.Error("Internal Server Error",
				"error", err,
				"request_id", c.GetString("RequestID"),
			)
			appErr = unexpectedError(fallbackContact, err.Error())
		} else if appErr.Err != nil {
			logger.Log.Warn("Request failed",
				"status", appErr.Code,
				"error", appErr.Err,
				"request_id", c.GetString("RequestID"),
			)
		}

		var errs interface{}
		if len(appErr.Errors) > 0 {
			errs = appErr.Errors
		}
		response.Error(c, appErr.Code, appErr.Message, errs, appErr.Debug)
	}
}
