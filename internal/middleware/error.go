// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"tourguide_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				if _, isAPIErr := common.IsAPIError(ginErr.Err); isAPIErr {
					common.RespondWithError(c, ginErr.Err)
				} else {
					logger.Error("Unhandled application error",
						zap.Error(ginErr.Err),
						zap.String("path", c.Request.URL.Path),
						zap.Any("meta", ginErr.Meta),
						zap.String("request_id", c.GetString(RequestIDContextKey)),
					)
					genericError := common.ErrInternalServer
					if gin.Mode() == gin.DebugMode && ginErr.Err != nil {
						genericError = genericError.WithDetails(ginErr.Err.Error())
					}
					common.RespondWithError(c, genericError)
				}
				return
			}
		}

		if c.Writer.Status() == http.StatusNotFound && len(c.Errors) == 0 && !c.Writer.Written() {
			common.RespondWithError(c, common.ErrNotFound.WithDetails("The requested endpoint does not exist."))
			return
		}
		if c.Writer.Status() == http.StatusMethodNotAllowed && len(c.Errors) == 0 && !c.Writer.Written() {
			common.RespondWithError(c, common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL."))
			return
		}
	}
}
