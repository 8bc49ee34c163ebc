// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

// Payment methods offered at checkout
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentPayPal = "paypal"
)

var (
	// ErrNoPaymentMethod rejects a submission with no payment method
	// selected. Detected locally; no network call is made.
	ErrNoPaymentMethod = errors.New("payment method is required")

	// ErrUnknownPaymentMethod rejects a payment method outside the offered
	// set. Detected locally; no network call is made.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrNoActiveCart rejects a submission from a session with no cart
	ErrNoActiveCart = errors.New("no active cart to order")
)

// PartialFailureError reports that the remote order was created but the local
// cart pointer could not be cleared afterwards. The order stands; the session
// still references a cart the remote side has already consumed.
type PartialFailureError struct {
	OrderID int
	Err     error
}

// Error implements the error interface
func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("order %d placed but cart state not cleared: %v", e.OrderID, e.Err)
}

// Unwrap exposes the underlying cause
func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// Confirmation is returned to the UI after a confirmed order submission
type Confirmation struct {
	Order *storeapi.Order `json:"order"`

	// AckWindow is how long the UI should display the success
	// acknowledgment before navigating away.
	AckWindow time.Duration `json:"-"`
}

// Service converts an active cart into a remote order and resets cart state.
// Submission is atomic: the local cart pointer is cleared only after the
// remote service confirms the order, so a failed submission never orphans the
// cart and the user can retry without losing it.
type Service struct {
	api       *storeapi.Client
	eventBus  *bus.Bus
	logger    *logrus.Logger
	ackWindow time.Duration
}

// NewService creates a new checkout service
func NewService(api *storeapi.Client, eventBus *bus.Bus, logger *logrus.Logger, ackWindow time.Duration) *Service {
	return &Service{
		api:       api,
		eventBus:  eventBus,
		logger:    logger,
		ackWindow: ackWindow,
	}
}

// SubmitOrder validates the payment method locally, posts the order, and on
// confirmed success clears the session's cart pointer and publishes
// CartUpdated. On a remote failure the cart pointer is left untouched.
func (s *Service) SubmitOrder(ctx context.Context, sess session.Handle, paymentMethod string) (*Confirmation, error) {
	switch paymentMethod {
	case "":
		return nil, ErrNoPaymentMethod
	case PaymentCash, PaymentCard, PaymentPayPal:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, paymentMethod)
	}

	token, ok, err := sess.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, session.ErrAuthRequired
	}

	userID, ok, err := sess.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, session.ErrAuthRequired
	}

	cartID, ok, err := sess.CartID(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoActiveCart
	}

	order, err := s.api.SubmitOrder(ctx, token, userID, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit order for cart %d: %w", cartID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"order_id":   order.OrderID,
		"cart_id":    cartID,
		"payment":    paymentMethod,
		"total":      order.TotalPrice.String(),
	}).Info("Order submitted")

	// The order is confirmed; only now does the cart pointer go away.
	if err := sess.ClearCartID(ctx); err != nil {
		return nil, &PartialFailureError{OrderID: order.OrderID, Err: err}
	}

	s.eventBus.Publish(bus.Event{Topic: bus.TopicCartUpdated, SessionID: sess.ID()})

	return &Confirmation{
		Order:     order,
		AckWindow: s.ackWindow,
	}, nil
}
