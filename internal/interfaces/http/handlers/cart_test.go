package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

// cartTestEnv wires the cart endpoints over a fake remote store
type cartTestEnv struct {
	router *gin.Engine
	store  *session.MemoryStore
	cfg    *config.Config
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := http.NewServeMux()
	remote.HandleFunc("POST /carts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(storeapi.Cart{CartID: 1})
	})
	remote.HandleFunc("POST /carts/{id}/items", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(storeapi.Cart{CartID: 1})
	})
	remote.HandleFunc("GET /carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(storeapi.Cart{CartID: 1, Items: []storeapi.CartLine{
			{CartItemID: 1, ProductID: 1, Quantity: 2},
		}})
	})
	remote.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]storeapi.Product{
			{ProductID: 1, Name: "Interior wall paint", Price: decimal.RequireFromString("79.90")},
		})
	})
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		StoreAPI: config.StoreAPIConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second},
		Session:  config.SessionConfig{CookieName: "sid", TTL: time.Hour},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	api := storeapi.NewClient(cfg)
	eventBus := bus.New()
	sessionStore := session.NewMemoryStore()

	cartService := cart.NewService(api, eventBus, logger)
	authService := auth.NewService(api, eventBus, logger)
	badge := cart.NewBadgeCache(cartService)
	badge.Start(eventBus)
	t.Cleanup(badge.Stop)

	handler := NewCartHandler(cartService, authService, badge)

	router := gin.New()
	router.Use(middleware.Session(cfg, sessionStore))
	router.POST("/cart/items", handler.AddItem)
	router.GET("/cart", handler.GetCart)
	router.DELETE("/cart", handler.ClearCart)
	router.GET("/cart/badge", handler.Badge)

	return &cartTestEnv{router: router, store: sessionStore, cfg: cfg}
}

func (e *cartTestEnv) login(t *testing.T, sessionID string) {
	t.Helper()
	handle := session.NewHandle(e.store, sessionID)
	require.NoError(t, handle.SetLogin(context.Background(), "opaque-token", 3, "Alice", session.RoleUser))
}

func (e *cartTestEnv) request(method, path, body, sessionID string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: e.cfg.Session.CookieName, Value: sessionID})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestAddItemEndpoint(t *testing.T) {
	env := newCartTestEnv(t)
	env.login(t, "s1")

	w := env.request(http.MethodPost, "/cart/items", `{"product_id": 1, "quantity": 2}`, "s1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddItemEndpointRejectsAnonymous(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.request(http.MethodPost, "/cart/items", `{"product_id": 1, "quantity": 2}`, "s1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "auth", body["kind"])
}

func TestAddItemEndpointValidatesBody(t *testing.T) {
	env := newCartTestEnv(t)
	env.login(t, "s1")

	w := env.request(http.MethodPost, "/cart/items", `{"product_id": 1, "quantity": 0}`, "s1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCartEndpointReturnsMergedTotals(t *testing.T) {
	env := newCartTestEnv(t)
	env.login(t, "s1")

	handle := session.NewHandle(env.store, "s1")
	require.NoError(t, handle.SetCartID(context.Background(), 1))

	w := env.request(http.MethodGet, "/cart", "", "s1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Items    []map[string]interface{} `json:"items"`
			Total    string                   `json:"total"`
			Quantity int                      `json:"quantity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, "Interior wall paint", body.Data.Items[0]["name"])
	assert.Equal(t, "159.8", body.Data.Total)
	assert.Equal(t, 2, body.Data.Quantity)
}

func TestMintedSessionCookieOnFirstRequest(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.request(http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestBadgeEndpoint(t *testing.T) {
	env := newCartTestEnv(t)
	env.login(t, "s1")

	handle := session.NewHandle(env.store, "s1")
	require.NoError(t, handle.SetCartID(context.Background(), 1))

	w := env.request(http.MethodGet, "/cart/badge", "", "s1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Count)
}
