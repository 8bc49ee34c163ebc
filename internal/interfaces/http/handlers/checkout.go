// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	authService     *auth.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, authService *auth.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		authService:     authService,
	}
}

// SubmitRequest represents a checkout submission
type SubmitRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.authService.CheckToken(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}

	confirmation, err := h.checkoutService.SubmitOrder(c.Request.Context(), sess, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"order":         confirmation.Order,
			"ack_window_ms": confirmation.AckWindow.Milliseconds(),
		},
	})
}
