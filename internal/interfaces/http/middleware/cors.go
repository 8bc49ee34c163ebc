// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
)

// CORS answers cross-origin requests from the storefront origins listed in
// the security config. Credentials are always allowed: the session rides on a
// cookie, so the browser must be permitted to send it cross-origin.
func CORS(cfg *config.Config) gin.HandlerFunc {
	// The allowed method and header sets never change at runtime.
	allowMethods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	allowHeaders := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originAllowed(origin, cfg.Security.CORSAllowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originAllowed matches an Origin header against the configured list. An
// entry of "*" admits everything; "*.example.com" admits any subdomain of
// example.com but not example.com itself.
func originAllowed(origin string, allowed []string) bool {
	for _, entry := range allowed {
		switch {
		case entry == "*", entry == origin:
			return true
		case strings.HasPrefix(entry, "*."):
			if strings.HasSuffix(origin, entry[1:]) {
				return true
			}
		}
	}
	return false
}
