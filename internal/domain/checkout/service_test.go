package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

type fakeOrders struct {
	mu       sync.Mutex
	nextID   int
	requests int
	fail     bool
}

func (f *fakeOrders) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		fail := f.fail
		f.nextID++
		orderID := f.nextID
		f.mu.Unlock()

		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if fail {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"detail": "Not enough stock"}`))
			return
		}

		var req struct {
			UserID int `json:"user_id"`
			CartID int `json:"cart_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		json.NewEncoder(w).Encode(storeapi.Order{
			OrderID:    orderID,
			UserID:     req.UserID,
			Status:     storeapi.OrderStatusPending,
			TotalPrice: decimal.RequireFromString("159.80"),
		})
	})
}

func (f *fakeOrders) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T, fake *fakeOrders) (*Service, *bus.Bus) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	api := storeapi.NewClient(&config.Config{
		StoreAPI: config.StoreAPIConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second},
	})
	eventBus := bus.New()
	return NewService(api, eventBus, quietLogger(), 2*time.Second), eventBus
}

func sessionWithCart(t *testing.T, store session.Store) session.Handle {
	t.Helper()
	sess := session.NewHandle(store, "s1")
	ctx := context.Background()
	require.NoError(t, sess.SetLogin(ctx, "tok-123", 3, "Alice", session.RoleUser))
	require.NoError(t, sess.SetCartID(ctx, 42))
	return sess
}

func TestSubmitRequiresPaymentMethod(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOrders{}
	service, _ := newTestService(t, fake)
	sess := sessionWithCart(t, session.NewMemoryStore())

	_, err := service.SubmitOrder(ctx, sess, "")
	assert.ErrorIs(t, err, ErrNoPaymentMethod)

	_, err = service.SubmitOrder(ctx, sess, "barter")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)

	// Local validation failures never reach the remote service and the
	// cart stays usable.
	assert.Equal(t, 0, fake.requestCount())

	cartID, ok, err := sess.CartID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, cartID)
}

func TestSubmitRequiresLogin(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOrders{}
	service, _ := newTestService(t, fake)
	sess := session.NewHandle(session.NewMemoryStore(), "s1")

	_, err := service.SubmitOrder(ctx, sess, PaymentCard)
	assert.ErrorIs(t, err, session.ErrAuthRequired)
	assert.Equal(t, 0, fake.requestCount())
}

func TestSubmitRequiresActiveCart(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOrders{}
	service, _ := newTestService(t, fake)

	sess := session.NewHandle(session.NewMemoryStore(), "s1")
	require.NoError(t, sess.SetLogin(ctx, "tok-123", 3, "Alice", session.RoleUser))

	_, err := service.SubmitOrder(ctx, sess, PaymentCash)
	assert.ErrorIs(t, err, ErrNoActiveCart)
	assert.Equal(t, 0, fake.requestCount())
}

func TestSubmitClearsCartAfterConfirmation(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOrders{}
	service, eventBus := newTestService(t, fake)
	sess := sessionWithCart(t, session.NewMemoryStore())

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	confirmation, err := service.SubmitOrder(ctx, sess, PaymentCard)
	require.NoError(t, err)
	require.NotNil(t, confirmation.Order)
	assert.Equal(t, storeapi.OrderStatusPending, confirmation.Order.Status)
	assert.Equal(t, 2*time.Second, confirmation.AckWindow)

	// The cart pointer is gone; the login survives.
	_, ok, err := sess.CartID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = sess.Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, published)
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOrders{fail: true}
	service, eventBus := newTestService(t, fake)
	sess := sessionWithCart(t, session.NewMemoryStore())

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	_, err := service.SubmitOrder(ctx, sess, PaymentCash)
	require.Error(t, err)

	var statusErr *storeapi.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)

	// A rejected order leaves the cart exactly as it was, so the user can
	// fix the problem and retry.
	cartID, ok, err := sess.CartID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, cartID)
	assert.Equal(t, 0, published)
}

// failingClearStore delegates to a memory store but refuses field deletes,
// simulating session storage breaking between order creation and cleanup.
type failingClearStore struct {
	*session.MemoryStore
	deleteErr error
}

func (f *failingClearStore) Delete(ctx context.Context, sessionID string, fields ...string) error {
	return f.deleteErr
}

func TestSubmitReportsPartialFailure(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOrders{}
	service, eventBus := newTestService(t, fake)

	store := &failingClearStore{
		MemoryStore: session.NewMemoryStore(),
		deleteErr:   errors.New("session storage unavailable"),
	}
	sess := sessionWithCart(t, store)

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	_, err := service.SubmitOrder(ctx, sess, PaymentPayPal)
	require.Error(t, err)

	var partial *PartialFailureError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, 1, partial.OrderID)
	assert.ErrorIs(t, err, store.deleteErr)

	// The order exists remotely even though local cleanup failed.
	assert.Equal(t, 1, fake.requestCount())
	assert.Equal(t, 0, published)
}
