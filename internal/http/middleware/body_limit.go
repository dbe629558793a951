package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitBody caps how much of the request body handlers may read. Reads past
// the cap fail with *http.MaxBytesError.
func LimitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
