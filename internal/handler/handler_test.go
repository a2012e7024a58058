package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/auth"
	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/database/memory"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testAPI struct {
	handler http.Handler
	store   *memory.Store
}

func newTestAPI(t *testing.T, authn ports.Authenticator, tweak func(*RouterConfig)) *testAPI {
	t.Helper()
	return newTestAPIWithStore(t, memory.New(), authn, tweak)
}

func newTestAPIWithStore(t *testing.T, store *memory.Store, authn ports.Authenticator, tweak func(*RouterConfig)) *testAPI {
	t.Helper()
	logger := discardLogger()

	tokens, err := auth.NewTokenService("handler-secret", "ecofinds", time.Hour)
	require.NoError(t, err)
	if authn == nil {
		authn = tokens
	}

	cfg := RouterConfig{
		Auth:           usecase.NewAuthUseCase(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, logger),
		Products:       usecase.NewProductUseCase(store, logger),
		Cart:           usecase.NewCartUseCase(store, store, nil, usecase.CheckoutPolicy{}, logger),
		Authenticator:  authn,
		DB:             store,
		Logger:         logger,
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"http://localhost:19006"},
	}
	if tweak != nil {
		tweak(&cfg)
	}
	return &testAPI{handler: NewRouter(cfg), store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rr, &body)
	return body["error"]
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (a *testAPI) register(t *testing.T, username string) session {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@ecofinds.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var s session
	decode(t, rr, &s)
	return s
}

func (a *testAPI) createProduct(t *testing.T, token, title string, price float64) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/products", token, map[string]interface{}{
		"title":       title,
		"description": title + " description",
		"category":    "books",
		"price":       price,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var body struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	decode(t, rr, &body)
	return body.Product.ID
}

func TestMarketplaceFlow(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	seller := api.register(t, "eco_seller")
	buyer := api.register(t, "green_buyer")

	first := api.createProduct(t, seller.Token, "Vintage Books Collection", 10)
	second := api.createProduct(t, seller.Token, "Poetry Anthology", 10)

	rr := api.do(t, http.MethodGet, "/products?category=books", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []map[string]interface{}
	decode(t, rr, &listed)
	assert.Len(t, listed, 2)

	rr = api.do(t, http.MethodGet, "/products/"+first, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var product map[string]interface{}
	decode(t, rr, &product)
	assert.Equal(t, float64(10), product["price"])
	assert.Equal(t, "good", product["condition"])

	for _, id := range []string{first, second} {
		rr = api.do(t, http.MethodPost, "/users/cart", buyer.Token, map[string]string{"productId": id})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = api.do(t, http.MethodGet, "/users/cart", buyer.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cart struct {
		Items []interface{} `json:"items"`
		Total float64       `json:"total"`
	}
	decode(t, rr, &cart)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, float64(20), cart.Total)

	rr = api.do(t, http.MethodPost, "/users/cart/purchase", buyer.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var checkout struct {
		ReceiptID      string        `json:"receipt_id"`
		PurchasedItems []interface{} `json:"purchasedItems"`
		Total          float64       `json:"total"`
	}
	decode(t, rr, &checkout)
	assert.NotEmpty(t, checkout.ReceiptID)
	assert.Len(t, checkout.PurchasedItems, 2)
	assert.Equal(t, float64(20), checkout.Total)

	rr = api.do(t, http.MethodPost, "/users/cart/purchase", buyer.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "cart is empty", errorMessage(t, rr))

	rr = api.do(t, http.MethodGet, "/users/purchases", buyer.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []map[string]interface{}
	decode(t, rr, &history)
	assert.Len(t, history, 2)

	rr = api.do(t, http.MethodDelete, "/products/"+first, seller.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "product with purchase history")
}

func TestLoginFailuresShareMessage(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	api.register(t, "eco_seller")

	wrong := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "eco_seller@ecofinds.com", "password": "nope-nope",
	})
	unknown := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ghost@ecofinds.com", "password": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, errorMessage(t, wrong), errorMessage(t, unknown))

	ok := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "eco_seller@ecofinds.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, ok.Code)
	var s session
	decode(t, ok, &s)
	assert.NotEmpty(t, s.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	api.register(t, "eco_seller")

	rr := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "another", "email": "eco_seller@ecofinds.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "email is already registered", errorMessage(t, rr))

	var body map[string]string
	decode(t, rr, &body)
	assert.Equal(t, body["error"], body["message"])
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	// 40 символов, но 120 байт
	rr := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "eco_seller", "email": "eco_seller@ecofinds.com", "password": strings.Repeat("日", 40),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Equal(t, "password must be at most 72 bytes long", errorMessage(t, rr))

	ok := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "eco_seller", "email": "eco_seller@ecofinds.com", "password": strings.Repeat("日", 24),
	})
	assert.Equal(t, http.StatusCreated, ok.Code, ok.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rr := api.do(t, http.MethodGet, "/users/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do(t, http.MethodGet, "/users/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rr = api.do(t, http.MethodPost, "/products", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestFixedIdentityNeedsNoToken(t *testing.T) {
	store := memory.New()
	demo := &domain.User{Username: "demo_user", Email: "demo@ecofinds.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), demo))

	api := newTestAPIWithStore(t, store, auth.FixedIdentity{UserID: demo.ID}, nil)

	rr := api.do(t, http.MethodGet, "/users/profile", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var profile map[string]interface{}
	decode(t, rr, &profile)
	assert.Equal(t, "demo_user", profile["username"])
	assert.NotContains(t, profile, "password_hash")
}

func TestProductOwnershipAndLookupErrors(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	seller := api.register(t, "eco_seller")
	buyer := api.register(t, "green_buyer")
	id := api.createProduct(t, seller.Token, "Lamp", 12.5)

	rr := api.do(t, http.MethodPut, "/products/"+id, buyer.Token, map[string]string{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do(t, http.MethodPut, "/products/"+id, seller.Token, map[string]interface{}{"price": 15, "is_available": false})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated struct {
		Product map[string]interface{} `json:"product"`
	}
	decode(t, rr, &updated)
	assert.Equal(t, "Lamp", updated.Product["title"])
	assert.Equal(t, float64(15), updated.Product["price"])

	rr = api.do(t, http.MethodGet, "/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodGet, "/products/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodDelete, "/products/"+uuid.NewString(), seller.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodGet, "/products/seller/"+seller.User.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var bySeller []interface{}
	decode(t, rr, &bySeller)
	assert.Len(t, bySeller, 1, "seller listing includes unavailable products")

	rr = api.do(t, http.MethodDelete, "/products/"+id, seller.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateProductRejectsForeignSellerID(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	seller := api.register(t, "eco_seller")

	rr := api.do(t, http.MethodPost, "/products", seller.Token, map[string]interface{}{
		"title": "Lamp", "description": "Desk lamp", "category": "home", "price": 10,
		"seller_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCartValidation(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	buyer := api.register(t, "green_buyer")

	rr := api.do(t, http.MethodPost, "/users/cart", buyer.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "productId is required", errorMessage(t, rr))

	rr = api.do(t, http.MethodPost, "/users/cart", buyer.Token, map[string]string{"productId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodDelete, "/users/cart/"+uuid.NewString(), buyer.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMalformedJSONBody(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	api.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid JSON body", errorMessage(t, rr))
}

func TestUpdateProfile(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	first := api.register(t, "eco_seller")
	api.register(t, "green_buyer")

	rr := api.do(t, http.MethodPut, "/users/profile", first.Token, map[string]string{"email": "green_buyer@ecofinds.com"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPut, "/users/profile", first.Token, map[string]string{"username": "eco_renamed"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodGet, "/users/profile", first.Token, nil)
	var profile map[string]interface{}
	decode(t, rr, &profile)
	assert.Equal(t, "eco_renamed", profile["username"])
}

func TestCategoriesAndHealth(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rr := api.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var categories []domain.Category
	decode(t, rr, &categories)
	assert.Len(t, categories, len(domain.Categories))

	rr = api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsUnavailableStore(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(failingPinger{}, discardLogger()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	api.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:19006", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	api.handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t, nil, func(cfg *RouterConfig) {
		cfg.AuthRateLimit = 0.001
		cfg.AuthRateBurst = 2
	})

	body := map[string]string{"email": "ghost@ecofinds.com", "password": "password123"}
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/auth/login", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/auth/login", "", body).Code)

	rr := api.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func loginFrom(api *testAPI, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@ecofinds.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rr := httptest.NewRecorder()
	api.handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	api := newTestAPI(t, nil, func(cfg *RouterConfig) {
		cfg.AuthRateLimit = 0.001
		cfg.AuthRateBurst = 1
	})

	limited := 0
	for i := 0; i < 20; i++ {
		if loginFrom(api, fmt.Sprintf("203.0.113.%d", i)).Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 19, limited)
}

func TestAuthRateLimitTrustsForwardedForBehindProxy(t *testing.T) {
	api := newTestAPI(t, nil, func(cfg *RouterConfig) {
		cfg.AuthRateLimit = 0.001
		cfg.AuthRateBurst = 1
		cfg.TrustProxyHeaders = true
	})

	assert.Equal(t, http.StatusBadRequest, loginFrom(api, "203.0.113.1").Code)
	assert.Equal(t, http.StatusBadRequest, loginFrom(api, "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(api, "203.0.113.1").Code)
}

func TestRateLimiterCapsTrackedClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, discardLogger())
	rl.maxVisitors = 3

	for i := 0; i < 10; i++ {
		rl.allow(fmt.Sprintf("198.51.100.%d", i))
		time.Sleep(time.Millisecond)
	}

	assert.Len(t, rl.limiters, 3)
	assert.Contains(t, rl.limiters, "198.51.100.9")
	assert.NotContains(t, rl.limiters, "198.51.100.0")
}

func TestRespondWithAppErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.NewValidationError("bad"), http.StatusBadRequest},
		{domain.NewConflictError("dup"), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusBadRequest},
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{domain.NewUnauthorizedError("no", nil), http.StatusUnauthorized},
		{domain.NewForbiddenError("no"), http.StatusForbidden},
		{domain.NewNotFoundError("gone"), http.StatusNotFound},
		{&domain.StoreError{Op: "op", Err: errors.New("conn reset"), Retryable: true}, http.StatusServiceUnavailable},
		{&domain.StoreError{Op: "op", Err: errors.New("syntax")}, http.StatusInternalServerError},
		{errors.New("anything"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		respondWithAppError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, discardLogger())
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
	}

	rr := httptest.NewRecorder()
	respondWithAppError(rr, httptest.NewRequest(http.MethodGet, "/", nil),
		&domain.StoreError{Op: "op", Err: errors.New("x"), Retryable: true}, discardLogger())
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.NotContains(t, rr.Body.String(), "x\"")
}
