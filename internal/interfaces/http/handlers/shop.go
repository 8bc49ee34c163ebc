// internal/interfaces/http/handlers/shop.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
)

// ShopHandler serves the public product catalog
type ShopHandler struct {
	api *storeapi.Client
}

// NewShopHandler creates a new shop handler
func NewShopHandler(api *storeapi.Client) *ShopHandler {
	return &ShopHandler{api: api}
}

// ListProducts handles GET /shop/products
func (h *ShopHandler) ListProducts(c *gin.Context) {
	products, err := h.api.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// GetProduct handles GET /shop/products/:id
func (h *ShopHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.api.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}
