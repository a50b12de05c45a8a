package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie is the browser cookie carrying the opaque session key.
	SessionCookie = "shop_session"

	// SessionKeyContext is the gin context key the session key is stored under.
	SessionKeyContext = "session_key"

	sessionMaxAge = 30 * 24 * 60 * 60 // 30 days
)

// Session assigns every visitor an opaque session key, creating one on
// first contact. Carts are keyed by this value.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionCookie)
		if err != nil || key == "" {
			key = uuid.NewString()
			c.SetCookie(SessionCookie, key, sessionMaxAge, "/", "", false, true)
		}
		c.Set(SessionKeyContext, key)
		c.Next()
	}
}

// SessionKey returns the session key placed on the context by Session.
func SessionKey(c *gin.Context) string {
	if v, ok := c.Get(SessionKeyContext); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
