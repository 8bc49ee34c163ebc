// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

// PlaceholderName is used for cart lines whose product is missing from the
// catalog. Such lines are kept, not dropped, so quantities stay accurate
// during in-flight catalog inconsistencies.
const PlaceholderName = "Unknown product"

// Service keeps exactly one active cart per session and keeps it consistent
// with the remote cart service across every UI entry point.
type Service struct {
	api      *storeapi.Client
	eventBus *bus.Bus
	logger   *logrus.Logger

	// creating guards first-time cart creation per session so two rapid
	// add-to-cart calls share one remote create instead of racing.
	creating singleflight.Group
}

// NewService creates a new cart service
func NewService(api *storeapi.Client, eventBus *bus.Bus, logger *logrus.Logger) *Service {
	return &Service{
		api:      api,
		eventBus: eventBus,
		logger:   logger,
	}
}

// MergedItem is the display-ready join of a cart line and its product
type MergedItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// MergedCart holds the joined cart contents
type MergedCart struct {
	Items []MergedItem `json:"items"`
}

// Total recomputes Σ(price × quantity) over all items. It is never stored.
func (m *MergedCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range m.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Quantity returns the summed item quantity, as shown on the header badge
func (m *MergedCart) Quantity() int {
	quantity := 0
	for _, item := range m.Items {
		quantity += item.Quantity
	}
	return quantity
}

// EnsureCart returns the session's active cart ID, creating a remote cart the
// first time. Idempotent per session: once stored, the ID is reused until it
// is explicitly cleared. Concurrent first calls share a single in-flight
// remote create.
func (s *Service) EnsureCart(ctx context.Context, sess session.Handle) (int, error) {
	if cartID, ok, err := sess.CartID(ctx); err != nil {
		return 0, err
	} else if ok {
		return cartID, nil
	}

	result, err, _ := s.creating.Do(sess.ID(), func() (interface{}, error) {
		// Re-check inside the guard: a concurrent caller may have stored
		// the ID while this one was waiting.
		if cartID, ok, err := sess.CartID(ctx); err != nil {
			return 0, err
		} else if ok {
			return cartID, nil
		}

		token, ok, err := sess.Token(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, session.ErrAuthRequired
		}

		userID, ok, err := sess.UserID(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, session.ErrAuthRequired
		}

		cartID, err := s.api.CreateCart(ctx, token, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to create cart: %w", err)
		}

		if err := sess.SetCartID(ctx, cartID); err != nil {
			return 0, fmt.Errorf("cart %d created but not stored in session: %w", cartID, err)
		}

		s.logger.WithFields(logrus.Fields{
			"session_id": sess.ID(),
			"cart_id":    cartID,
		}).Info("Cart created")

		return cartID, nil
	})
	if err != nil {
		return 0, err
	}

	return result.(int), nil
}

// AddItem appends or increments a line on the session's cart, creating the
// cart first when needed. Requires a logged-in session; without a token it
// short-circuits before any network call. CartUpdated is published whether
// the add succeeds or fails, so a stale badge never survives a failed retry.
func (s *Service) AddItem(ctx context.Context, sess session.Handle, productID, quantity int) error {
	defer s.eventBus.Publish(bus.Event{Topic: bus.TopicCartUpdated, SessionID: sess.ID()})

	token, ok, err := sess.Token(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrAuthRequired
	}

	cartID, err := s.EnsureCart(ctx, sess)
	if err != nil {
		return err
	}

	if err := s.api.AddCartItem(ctx, token, cartID, productID, quantity); err != nil {
		return fmt.Errorf("failed to add item to cart %d: %w", cartID, err)
	}

	return nil
}

// RemoveItem deletes a single line from the session's cart. Like AddItem it
// requires a logged-in session and publishes CartUpdated for every attempt.
// A session without an active cart has no lines to remove.
func (s *Service) RemoveItem(ctx context.Context, sess session.Handle, cartItemID int) error {
	defer s.eventBus.Publish(bus.Event{Topic: bus.TopicCartUpdated, SessionID: sess.ID()})

	token, ok, err := sess.Token(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrAuthRequired
	}

	cartID, ok, err := sess.CartID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.api.RemoveCartItem(ctx, token, cartID, cartItemID); err != nil {
		return fmt.Errorf("failed to remove item %d from cart %d: %w", cartItemID, cartID, err)
	}

	return nil
}

// LoadMergedCart fetches the raw cart lines and the product catalog and joins
// them on product ID. Lines whose product is missing resolve to a placeholder
// name and zero price rather than being dropped. A session without an active
// cart yields an empty merged cart.
func (s *Service) LoadMergedCart(ctx context.Context, sess session.Handle) (*MergedCart, error) {
	cartID, ok, err := sess.CartID(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &MergedCart{Items: []MergedItem{}}, nil
	}

	token, _, err := sess.Token(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := s.api.GetCart(ctx, token, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %d: %w", cartID, err)
	}

	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	byID := make(map[int]storeapi.Product, len(products))
	for _, product := range products {
		byID[product.ProductID] = product
	}

	merged := &MergedCart{Items: make([]MergedItem, 0, len(remote.Items))}
	for _, line := range remote.Items {
		item := MergedItem{
			ID:       line.ProductID,
			Quantity: line.Quantity,
			Name:     PlaceholderName,
			Price:    decimal.Zero,
		}
		if product, found := byID[line.ProductID]; found {
			item.Name = product.Name
			item.Price = product.Price
			item.Image = product.ImageURL
		}
		merged.Items = append(merged.Items, item)
	}

	return merged, nil
}

// ItemCount returns the summed quantity across the session's cart lines
func (s *Service) ItemCount(ctx context.Context, sess session.Handle) (int, error) {
	cartID, ok, err := sess.CartID(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	token, _, err := sess.Token(ctx)
	if err != nil {
		return 0, err
	}

	remote, err := s.api.GetCart(ctx, token, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart %d: %w", cartID, err)
	}

	count := 0
	for _, line := range remote.Items {
		count += line.Quantity
	}
	return count, nil
}

// ClearCart deletes the remote cart and removes the cart pointer from the
// session. Irreversible; there is no local undo.
func (s *Service) ClearCart(ctx context.Context, sess session.Handle) error {
	cartID, ok, err := sess.CartID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	token, _, err := sess.Token(ctx)
	if err != nil {
		return err
	}

	if err := s.api.DeleteCart(ctx, token, cartID); err != nil {
		return fmt.Errorf("failed to delete cart %d: %w", cartID, err)
	}

	if err := sess.ClearCartID(ctx); err != nil {
		return fmt.Errorf("cart %d deleted but session pointer not cleared: %w", cartID, err)
	}

	s.eventBus.Publish(bus.Event{Topic: bus.TopicCartUpdated, SessionID: sess.ID()})
	return nil
}
