package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rethinkmedia/backend/internal/common"
	"github.com/rethinkmedia/backend/internal/logging"
)

// Recovery turns handler panics into a JSON 500 instead of a dropped
// connection.
func Recovery(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panic",
					"path", c.Request.URL.Path,
					"request_id", c.GetString(RequestIDKey),
					"panic", r)
				common.Fail(c, http.StatusInternalServerError, "internal error", "")
				c.Abort()
			}
		}()
		c.Next()
	}
}
