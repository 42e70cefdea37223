package common

import "github.com/gin-gonic/gin"

// OK writes the payload as-is; the generation endpoints return the exact
// shapes the web client polls against, not a wrapped envelope.
func OK(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

func Fail(c *gin.Context, httpStatus int, msg, details string) {
	c.JSON(httpStatus, gin.H{
		"error":   msg,
		"details": details,
	})
}
