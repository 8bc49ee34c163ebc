// internal/infrastructure/storeapi/products.go
package storeapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Product is read-only catalog data owned by the remote service
type Product struct {
	ProductID   int             `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	ImageURL    string          `json:"image_url"`
}

// ListProducts fetches the full product catalog
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by ID
func (c *Client) GetProduct(ctx context.Context, productID int) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
