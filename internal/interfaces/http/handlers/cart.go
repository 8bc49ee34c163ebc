// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	authService *auth.Service
	badge       *cart.BadgeCache
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, authService *auth.Service, badge *cart.BadgeCache) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		authService: authService,
		badge:       badge,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Expired tokens are rejected up front so the add never reaches the
	// remote API with credentials it would refuse.
	if err := h.authService.CheckToken(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}

	if err := h.cartService.AddItem(c.Request.Context(), sess, req.ProductID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	cartItemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	if err := h.authService.CheckToken(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), sess, cartItemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
	})
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	merged, err := h.cartService.LoadMergedCart(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data": gin.H{
			"items":    merged.Items,
			"total":    merged.Total(),
			"quantity": merged.Quantity(),
		},
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// Badge handles GET /cart/badge
func (h *CartHandler) Badge(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	count, err := h.badge.Count(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Badge count retrieved successfully",
		"data":    gin.H{"count": count},
	})
}
