// internal/interfaces/http/handlers/profile.go
package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/domain/profile"
	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

// ProfileHandler handles the profile dashboard endpoints. Dashboards are kept
// per session so section caches survive across requests; a logout event drops
// the session's dashboard along with its cached data, and dashboards idle
// longer than the session TTL are evicted so expired sessions do not pin
// their cached lists for the process lifetime.
type ProfileHandler struct {
	profileService *profile.Service
	ttl            time.Duration

	mu         sync.Mutex
	dashboards map[string]*dashboardEntry
}

type dashboardEntry struct {
	dashboard *profile.Dashboard
	lastSeen  time.Time
}

// NewProfileHandler creates a new profile handler. ttl should match the
// session store's expiration.
func NewProfileHandler(profileService *profile.Service, eventBus *bus.Bus, ttl time.Duration) *ProfileHandler {
	h := &ProfileHandler{
		profileService: profileService,
		ttl:            ttl,
		dashboards:     make(map[string]*dashboardEntry),
	}
	eventBus.Subscribe(bus.TopicUserLoggedOut, func(event bus.Event) {
		h.mu.Lock()
		delete(h.dashboards, event.SessionID)
		h.mu.Unlock()
	})
	return h
}

func (h *ProfileHandler) dashboard(sess session.Handle) *profile.Dashboard {
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, entry := range h.dashboards {
		if now.Sub(entry.lastSeen) > h.ttl {
			delete(h.dashboards, sessionID)
		}
	}

	entry, ok := h.dashboards[sess.ID()]
	if !ok {
		entry = &dashboardEntry{dashboard: h.profileService.NewDashboard(sess)}
		h.dashboards[sess.ID()] = entry
	}
	entry.lastSeen = now
	return entry.dashboard
}

// Section handles GET /profile/:section
func (h *ProfileHandler) Section(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	data, err := h.dashboard(sess).Load(c.Request.Context(), profile.Section(c.Param("section")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Section loaded successfully",
		"data":    data,
	})
}

// OrderDetail handles GET /profile/orders/:id/items
func (h *ProfileHandler) OrderDetail(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	items, err := h.dashboard(sess).OrderDetail(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order items retrieved successfully",
		"data":    items,
	})
}

// UpdateAccount handles PUT /profile/account
func (h *ProfileHandler) UpdateAccount(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req storeapi.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.dashboard(sess).UpdateAccount(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account updated successfully",
	})
}

// DeleteUser handles DELETE /profile/users/:id
func (h *ProfileHandler) DeleteUser(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	users, err := h.dashboard(sess).DeleteUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"data":    users,
	})
}

// UpdateInventoryRequest patches a stock record
type UpdateInventoryRequest struct {
	Quantity *int    `json:"quantity"`
	Location *string `json:"location"`
}

// UpdateInventory handles PATCH /profile/inventory/:id
func (h *ProfileHandler) UpdateInventory(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	inventoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inventory ID"})
		return
	}

	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must not be negative"})
		return
	}

	records, err := h.dashboard(sess).UpdateInventory(c.Request.Context(), inventoryID, storeapi.InventoryPatch{
		Quantity: req.Quantity,
		Location: req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory updated successfully",
		"data":    records,
	})
}

// CompleteOrder handles PATCH /profile/orders/:id/complete
func (h *ProfileHandler) CompleteOrder(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	orders, err := h.dashboard(sess).CompleteOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order completed successfully",
		"data":    orders,
	})
}

// Stats handles GET /profile/stats
func (h *ProfileHandler) Stats(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	interval := c.DefaultQuery("interval", storeapi.IntervalDaily)

	stats, err := h.dashboard(sess).Stats(c.Request.Context(), interval)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Statistics retrieved successfully",
		"data":    stats,
	})
}
