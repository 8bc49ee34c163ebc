// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/session"
)

const sessionContextKey = "session_handle"

// Session attaches a session handle to every request, minting a new session
// cookie when the browser does not carry one yet.
func Session(cfg *config.Config, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(
				cfg.Session.CookieName,
				sessionID,
				int(cfg.Session.TTL.Seconds()),
				"/",
				"",
				cfg.Session.CookieSecure,
				true, // httpOnly
			)
		}

		c.Set(sessionContextKey, session.NewHandle(store, sessionID))
		c.Next()
	}
}

// GetSessionFromContext extracts the session handle from gin context
func GetSessionFromContext(c *gin.Context) (session.Handle, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return session.Handle{}, false
	}
	handle, ok := value.(session.Handle)
	return handle, ok
}

// RequireSession aborts with 500 when the session middleware is missing.
// Handlers use it so a wiring mistake fails loudly instead of silently
// serving an anonymous session.
func RequireSession(c *gin.Context) (session.Handle, bool) {
	handle, ok := GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Session middleware not configured",
		})
		c.Abort()
	}
	return handle, ok
}
