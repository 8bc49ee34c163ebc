// internal/infrastructure/storeapi/orders.go
package storeapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the remote order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of a placed order
type OrderItem struct {
	OrderItemID int             `json:"order_item_id"`
	ProductID   int             `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is created by the remote service on checkout submission; the gateway
// never computes totals or validates stock itself.
type Order struct {
	OrderID    int             `json:"order_id"`
	UserID     int             `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items"`
}

type submitOrderRequest struct {
	UserID int `json:"user_id"`
	CartID int `json:"cart_id"`
}

type orderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// SubmitOrder converts a cart into an order on the remote service
func (c *Client) SubmitOrder(ctx context.Context, token string, userID, cartID int) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, submitOrderRequest{UserID: userID, CartID: cartID}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches every order, newest data included
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order with its items
func (c *Client) GetOrder(ctx context.Context, token string, orderID int) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus patches the status of an order
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, orderID int, status OrderStatus) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID), token, orderStatusRequest{Status: status}, nil)
}
