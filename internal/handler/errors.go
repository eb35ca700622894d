package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/circuitbreaker"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/credits"
)

// Maps calculator errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, credits.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, credits.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	switch status {
	case http.StatusInternalServerError:
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal Server Error"})
		return
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", "30")
		c.AbortWithStatusJSON(status, gin.H{"error": "Session store unavailable, try again shortly"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
