// internal/infrastructure/storeapi/carts.go
package storeapi

import (
	"context"
	"fmt"
	"net/http"
)

// CartLine is one line of a remote cart. Product data is never embedded; the
// caller joins lines against the catalog.
type CartLine struct {
	CartItemID int `json:"cart_item_id"`
	ProductID  int `json:"product_id"`
	Quantity   int `json:"quantity"`
}

// Cart is the remote cart as the store API returns it
type Cart struct {
	CartID int        `json:"cart_id"`
	UserID int        `json:"user_id"`
	Items  []CartLine `json:"items"`
}

type createCartRequest struct {
	UserID int `json:"user_id"`
}

type addCartItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CreateCart creates a new remote cart for the user and returns its ID
func (c *Client) CreateCart(ctx context.Context, token string, userID int) (int, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/carts", token, createCartRequest{UserID: userID}, &cart); err != nil {
		return 0, err
	}
	return cart.CartID, nil
}

// AddCartItem appends or increments a line on the remote cart
func (c *Client) AddCartItem(ctx context.Context, token string, cartID, productID, quantity int) error {
	path := fmt.Sprintf("/carts/%d/items", cartID)
	return c.do(ctx, http.MethodPost, path, token, addCartItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

// GetCart fetches the remote cart with its raw lines
func (c *Client) GetCart(ctx context.Context, token string, cartID int) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/carts/%d", cartID), token, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem deletes a single line from the remote cart
func (c *Client) RemoveCartItem(ctx context.Context, token string, cartID, cartItemID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/carts/%d/items/%d", cartID, cartItemID), token, nil, nil)
}

// DeleteCart deletes the remote cart. Irreversible.
func (c *Client) DeleteCart(ctx context.Context, token string, cartID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/carts/%d", cartID), token, nil, nil)
}
