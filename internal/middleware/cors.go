package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows browser clients on any origin to drive the API. The session
// header has to be both allowed and exposed for them to keep a session.
func CORS(sessionHeader string) gin.HandlerFunc {
	allowHeaders := strings.Join([]string{"Content-Type", "Authorization", RequestIDHeader, sessionHeader}, ", ")
	exposeHeaders := strings.Join([]string{
		RequestIDHeader,
		sessionHeader,
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
		"Retry-After",
	}, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Expose-Headers", exposeHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
