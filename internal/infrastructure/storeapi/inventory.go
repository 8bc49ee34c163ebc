// internal/infrastructure/storeapi/inventory.go
package storeapi

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// InventoryRecord is one stock row at one location
type InventoryRecord struct {
	InventoryID int       `json:"inventory_id"`
	ProductID   int       `json:"product_id"`
	Location    string    `json:"location"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InventoryPatch carries the fields of a partial inventory update. Nil fields
// are left untouched on the remote side.
type InventoryPatch struct {
	Quantity *int    `json:"quantity,omitempty"`
	Location *string `json:"location,omitempty"`
}

// ListInventory fetches every stock record. Admin only on the remote side.
func (c *Client) ListInventory(ctx context.Context, token string) ([]InventoryRecord, error) {
	var records []InventoryRecord
	if err := c.do(ctx, http.MethodGet, "/inventory", token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateInventory patches quantity and/or location of a stock record
func (c *Client) UpdateInventory(ctx context.Context, token string, inventoryID int, patch InventoryPatch) (*InventoryRecord, error) {
	var record InventoryRecord
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/inventory/%d", inventoryID), token, patch, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
