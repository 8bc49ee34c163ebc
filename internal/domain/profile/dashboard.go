// internal/domain/profile/dashboard.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
)

// Section identifies one dashboard section
type Section string

// The fixed set of dashboard sections. Account is the default; users,
// inventory and stats are admin-only.
const (
	SectionAccount   Section = "account"
	SectionOrders    Section = "orders"
	SectionUsers     Section = "users"
	SectionInventory Section = "inventory"
	SectionStats     Section = "stats"
)

// DefaultSection is selected when the dashboard opens
const DefaultSection = SectionAccount

var (
	// ErrUnknownSection rejects a section key outside the fixed set
	ErrUnknownSection = errors.New("unknown dashboard section")

	// ErrAdminRequired gates admin-only sections and mutations
	ErrAdminRequired = errors.New("admin access required")
)

// Service builds per-session dashboards
type Service struct {
	api    *storeapi.Client
	logger *logrus.Logger
}

// NewService creates a new profile service
func NewService(api *storeapi.Client, logger *logrus.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger,
	}
}

// Dashboard fetches and holds one session's dashboard state: the per-section
// lists and a lazy order-detail cache. Detail items are fetched the first
// time an order row is expanded, then cached for the dashboard's lifetime,
// keyed by order ID.
type Dashboard struct {
	service *Service
	sess    session.Handle

	mu        sync.Mutex
	orders    []storeapi.Order
	users     []storeapi.User
	inventory []storeapi.InventoryRecord
	details   map[int][]storeapi.OrderItem
}

// NewDashboard creates a dashboard bound to one session
func (s *Service) NewDashboard(sess session.Handle) *Dashboard {
	return &Dashboard{
		service: s,
		sess:    sess,
		details: make(map[int][]storeapi.OrderItem),
	}
}

// Load fetches the data for a section, gating admin-only sections on the
// session's role flag.
func (d *Dashboard) Load(ctx context.Context, section Section) (interface{}, error) {
	switch section {
	case SectionAccount:
		return d.Account(ctx)
	case SectionOrders:
		return d.Orders(ctx)
	case SectionUsers:
		return d.Users(ctx)
	case SectionInventory:
		return d.Inventory(ctx)
	case SectionStats:
		return d.Stats(ctx, storeapi.IntervalDaily)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
}

// Account fetches the logged-in user's profile
func (d *Dashboard) Account(ctx context.Context) (*storeapi.User, error) {
	token, err := d.token(ctx)
	if err != nil {
		return nil, err
	}
	return d.service.api.CurrentUser(ctx, token)
}

// UpdateAccount updates the logged-in user's profile fields
func (d *Dashboard) UpdateAccount(ctx context.Context, update storeapi.UpdateUserRequest) error {
	token, err := d.token(ctx)
	if err != nil {
		return err
	}

	userID, ok, err := d.sess.UserID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrAuthRequired
	}

	return d.service.api.UpdateUser(ctx, token, userID, update)
}

// Orders fetches the order list. Admins see every order; regular users see
// only their own.
func (d *Dashboard) Orders(ctx context.Context) ([]storeapi.Order, error) {
	token, err := d.token(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := d.service.api.ListOrders(ctx, token)
	if err != nil {
		return nil, err
	}

	isAdmin, err := d.sess.IsAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		userID, _, err := d.sess.UserID(ctx)
		if err != nil {
			return nil, err
		}
		own := orders[:0]
		for _, order := range orders {
			if order.UserID == userID {
				own = append(own, order)
			}
		}
		orders = own
	}

	d.mu.Lock()
	d.orders = orders
	d.mu.Unlock()

	return orders, nil
}

// OrderDetail returns the items of one order, fetching them the first time
// the row is expanded and serving the cache afterwards.
func (d *Dashboard) OrderDetail(ctx context.Context, orderID int) ([]storeapi.OrderItem, error) {
	d.mu.Lock()
	items, cached := d.details[orderID]
	d.mu.Unlock()
	if cached {
		return items, nil
	}

	token, err := d.token(ctx)
	if err != nil {
		return nil, err
	}

	order, err := d.service.api.GetOrder(ctx, token, orderID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.details[orderID] = order.Items
	d.mu.Unlock()

	return order.Items, nil
}

// Users fetches every account. Admin only.
func (d *Dashboard) Users(ctx context.Context) ([]storeapi.User, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	users, err := d.service.api.ListUsers(ctx, token)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.users = users
	d.mu.Unlock()

	return users, nil
}

// Inventory fetches every stock record. Admin only.
func (d *Dashboard) Inventory(ctx context.Context) ([]storeapi.InventoryRecord, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	records, err := d.service.api.ListInventory(ctx, token)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.inventory = records
	d.mu.Unlock()

	return records, nil
}

// Stats fetches aggregated order statistics. Admin only.
func (d *Dashboard) Stats(ctx context.Context, interval string) (*storeapi.Stats, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return nil, err
	}
	return d.service.api.GetStats(ctx, token, interval)
}

// DeleteUser removes an account and, only after the remote call confirms
// success, drops it from the cached list.
func (d *Dashboard) DeleteUser(ctx context.Context, userID int) ([]storeapi.User, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.service.api.DeleteUser(ctx, token, userID); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].UserID == userID {
			d.users = append(d.users[:i], d.users[i+1:]...)
			break
		}
	}
	return d.users, nil
}

// UpdateInventory patches a stock record and, only after the remote call
// confirms success, replaces the cached row with the confirmed state.
func (d *Dashboard) UpdateInventory(ctx context.Context, inventoryID int, patch storeapi.InventoryPatch) ([]storeapi.InventoryRecord, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := d.service.api.UpdateInventory(ctx, token, inventoryID, patch)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.inventory {
		if d.inventory[i].InventoryID == inventoryID {
			d.inventory[i] = *updated
			break
		}
	}
	return d.inventory, nil
}

// CompleteOrder marks an order completed and, only after the remote call
// confirms success, updates the cached row.
func (d *Dashboard) CompleteOrder(ctx context.Context, orderID int) ([]storeapi.Order, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.service.api.UpdateOrderStatus(ctx, token, orderID, storeapi.OrderStatusCompleted); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.orders {
		if d.orders[i].OrderID == orderID {
			d.orders[i].Status = storeapi.OrderStatusCompleted
			break
		}
	}
	return d.orders, nil
}

func (d *Dashboard) token(ctx context.Context) (string, error) {
	token, ok, err := d.sess.Token(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", session.ErrAuthRequired
	}
	return token, nil
}

func (d *Dashboard) adminToken(ctx context.Context) (string, error) {
	token, err := d.token(ctx)
	if err != nil {
		return "", err
	}

	isAdmin, err := d.sess.IsAdmin(ctx)
	if err != nil {
		return "", err
	}
	if !isAdmin {
		return "", ErrAdminRequired
	}
	return token, nil
}
