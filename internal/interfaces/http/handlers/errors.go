// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/profile"
	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
)

// respondError maps domain errors onto HTTP responses. Validation problems
// come back 400, missing/expired authentication 401, role gating 403, remote
// store failures 502, and everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrAuthRequired), errors.Is(err, auth.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
			"kind":  "auth",
		})

	case errors.Is(err, profile.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Admin access required",
			"kind":  "forbidden",
		})

	case errors.Is(err, checkout.ErrNoPaymentMethod),
		errors.Is(err, checkout.ErrUnknownPaymentMethod),
		errors.Is(err, checkout.ErrNoActiveCart),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, profile.ErrUnknownSection):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"kind":  "validation",
		})

	default:
		var partial *checkout.PartialFailureError
		if errors.As(err, &partial) {
			// The order exists remotely; the client must not retry the
			// submission, only refresh its cart state.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    partial.Error(),
				"kind":     "partial_failure",
				"order_id": partial.OrderID,
			})
			return
		}

		var remote *storeapi.StatusError
		if errors.As(err, &remote) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           "Store API request failed",
				"kind":            "remote",
				"upstream_status": remote.StatusCode,
				"detail":          remote.Detail,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal error",
			"kind":  "internal",
		})
	}
}
