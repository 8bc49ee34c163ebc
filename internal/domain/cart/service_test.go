package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// fakeStore is an in-memory stand-in for the remote store API
type fakeStore struct {
	mu         sync.Mutex
	nextCartID int
	carts      map[int][]storeapi.CartLine
	products   []storeapi.Product
	requests   int
	creates    int
}

func newFakeStore(products ...storeapi.Product) *fakeStore {
	return &fakeStore{
		nextCartID: 1,
		carts:      make(map[int][]storeapi.CartLine),
		products:   products,
	}
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /carts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		cartID := f.nextCartID
		f.nextCartID++
		f.carts[cartID] = []storeapi.CartLine{}
		f.creates++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(storeapi.Cart{CartID: cartID})
	})

	mux.HandleFunc("POST /carts/{id}/items", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		var cartID int
		fmt.Sscanf(r.PathValue("id"), "%d", &cartID)

		f.mu.Lock()
		defer f.mu.Unlock()
		lines, ok := f.carts[cartID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Cart not found"}`))
			return
		}
		for i := range lines {
			if lines[i].ProductID == req.ProductID {
				lines[i].Quantity += req.Quantity
				f.carts[cartID] = lines
				json.NewEncoder(w).Encode(storeapi.Cart{CartID: cartID, Items: lines})
				return
			}
		}
		lines = append(lines, storeapi.CartLine{CartItemID: len(lines) + 1, ProductID: req.ProductID, Quantity: req.Quantity})
		f.carts[cartID] = lines
		json.NewEncoder(w).Encode(storeapi.Cart{CartID: cartID, Items: lines})
	})

	mux.HandleFunc("DELETE /carts/{id}/items/{itemID}", func(w http.ResponseWriter, r *http.Request) {
		var cartID, itemID int
		fmt.Sscanf(r.PathValue("id"), "%d", &cartID)
		fmt.Sscanf(r.PathValue("itemID"), "%d", &itemID)

		f.mu.Lock()
		defer f.mu.Unlock()
		lines, ok := f.carts[cartID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Cart not found"}`))
			return
		}
		for i := range lines {
			if lines[i].CartItemID == itemID {
				f.carts[cartID] = append(lines[:i], lines[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Cart item not found"}`))
	})

	mux.HandleFunc("GET /carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var cartID int
		fmt.Sscanf(r.PathValue("id"), "%d", &cartID)

		f.mu.Lock()
		lines, ok := f.carts[cartID]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Cart not found"}`))
			return
		}
		json.NewEncoder(w).Encode(storeapi.Cart{CartID: cartID, Items: lines})
	})

	mux.HandleFunc("DELETE /carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var cartID int
		fmt.Sscanf(r.PathValue("id"), "%d", &cartID)

		f.mu.Lock()
		delete(f.carts, cartID)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		products := f.products
		f.mu.Unlock()
		json.NewEncoder(w).Encode(products)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeStore) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeStore) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T, fake *fakeStore) (*Service, *bus.Bus) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	api := storeapi.NewClient(&config.Config{
		StoreAPI: config.StoreAPIConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second},
	})
	eventBus := bus.New()
	return NewService(api, eventBus, quietLogger()), eventBus
}

func loggedInSession(t *testing.T, id string) session.Handle {
	t.Helper()
	sess := session.NewHandle(session.NewMemoryStore(), id)
	require.NoError(t, sess.SetLogin(context.Background(), "tok-123", 3, "Alice", session.RoleUser))
	return sess
}

func TestEnsureCartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, _ := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	first, err := service.EnsureCart(ctx, sess)
	require.NoError(t, err)

	second, err := service.EnsureCart(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.createCount())
}

func TestConcurrentAddsCreateOneCart(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, _ := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = service.AddItem(ctx, sess, 1, 1)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.createCount())

	count, err := service.ItemCount(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, goroutines, count)
}

func TestAddItemWithoutLoginShortCircuits(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, eventBus := newTestService(t, fake)
	sess := session.NewHandle(session.NewMemoryStore(), "s1")

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	err := service.AddItem(ctx, sess, 1, 1)
	assert.ErrorIs(t, err, session.ErrAuthRequired)

	// The rejection never reaches the network.
	assert.Equal(t, 0, fake.requestCount())
	// Add attempts refresh listeners whether they succeed or not.
	assert.Equal(t, 1, published)
}

func TestAddItemPublishesCartUpdated(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, eventBus := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	var got []bus.Event
	eventBus.Subscribe(bus.TopicCartUpdated, func(event bus.Event) { got = append(got, event) })

	require.NoError(t, service.AddItem(ctx, sess, 1, 2))

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
}

func TestRemoveItemDeletesLineAndNotifies(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, eventBus := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	require.NoError(t, service.AddItem(ctx, sess, 1, 2))
	require.NoError(t, service.AddItem(ctx, sess, 5, 1))

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	// The first line has cart_item_id 1.
	require.NoError(t, service.RemoveItem(ctx, sess, 1))
	assert.Equal(t, 1, published)

	count, err := service.ItemCount(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemoveItemWithoutLoginShortCircuits(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, eventBus := newTestService(t, fake)
	sess := session.NewHandle(session.NewMemoryStore(), "s1")

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	err := service.RemoveItem(ctx, sess, 1)
	assert.ErrorIs(t, err, session.ErrAuthRequired)
	assert.Equal(t, 0, fake.requestCount())
	assert.Equal(t, 1, published)
}

func TestRemoveItemWithoutCartIsNoOp(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, _ := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	require.NoError(t, service.RemoveItem(ctx, sess, 1))
	assert.Equal(t, 0, fake.requestCount())
}

func TestLoadMergedCartJoinsCatalog(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore(storeapi.Product{
		ProductID: 1,
		Name:      "Interior wall paint",
		Price:     decimal.RequireFromString("79.90"),
		ImageURL:  "/img/paint.png",
	})
	service, _ := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	require.NoError(t, service.AddItem(ctx, sess, 1, 2))
	require.NoError(t, service.AddItem(ctx, sess, 5, 1)) // not in the catalog

	merged, err := service.LoadMergedCart(ctx, sess)
	require.NoError(t, err)

	// One merged item per line; the unknown product is kept, not dropped.
	require.Len(t, merged.Items, 2)

	assert.Equal(t, "Interior wall paint", merged.Items[0].Name)
	assert.Equal(t, 2, merged.Items[0].Quantity)
	assert.Equal(t, "/img/paint.png", merged.Items[0].Image)

	assert.Equal(t, PlaceholderName, merged.Items[1].Name)
	assert.True(t, merged.Items[1].Price.IsZero())
	assert.Equal(t, 1, merged.Items[1].Quantity)

	assert.True(t, merged.Total().Equal(decimal.RequireFromString("159.80")), "total was %s", merged.Total())
	assert.Equal(t, 3, merged.Quantity())
}

func TestLoadMergedCartWithoutCartIsEmpty(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, _ := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	merged, err := service.LoadMergedCart(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, merged.Items)
	assert.True(t, merged.Total().IsZero())
	assert.Equal(t, 0, fake.requestCount())
}

func TestClearCartDropsPointerAndNotifies(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, eventBus := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	require.NoError(t, service.AddItem(ctx, sess, 1, 1))
	oldID, _, err := sess.CartID(ctx)
	require.NoError(t, err)

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	require.NoError(t, service.ClearCart(ctx, sess))
	assert.Equal(t, 1, published)

	_, ok, err := sess.CartID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// The next cart is a fresh one, never the deleted ID.
	newID, err := service.EnsureCart(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, oldID, newID)
}

func TestClearCartWithoutCartIsNoOp(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, _ := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	require.NoError(t, service.ClearCart(ctx, sess))
	assert.Equal(t, 0, fake.requestCount())
}

func TestAddItemFailureStillPublishes(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	service, eventBus := newTestService(t, fake)
	sess := loggedInSession(t, "s1")

	// Point the session at a cart the remote side does not know.
	require.NoError(t, sess.SetCartID(ctx, 999))

	published := 0
	eventBus.Subscribe(bus.TopicCartUpdated, func(bus.Event) { published++ })

	err := service.AddItem(ctx, sess, 1, 1)
	require.Error(t, err)

	var statusErr *storeapi.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 1, published)
}
