package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionIDKey = "session_id"

// Session resolves the calculator session for the request. An absent or
// malformed header starts a new session. The id is always echoed back so
// the client can keep using it.
func Session(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(header))
		if err != nil || id == uuid.Nil {
			id = uuid.New()
		}

		c.Set(SessionIDKey, id)
		c.Header(header, id.String())

		c.Next()
	}
}

// SessionID returns the id set by Session, and false outside a session route.
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(SessionIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
