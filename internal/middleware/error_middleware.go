package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/transport/httpdto"
	"towerdeck/pkg/logger"
)

// ErrorHandler is the last-resort boundary: anything handlers leave on the
// gin context is logged and mapped to a generic response. Internal error text
// never reaches the client from here.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}
