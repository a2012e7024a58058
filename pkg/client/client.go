// Package client - типизированный HTTP-клиент REST API EcoFinds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// APIError - ошибка, которую вернул сервер в теле {"error": "..."}
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ecofinds api: %d %s", e.Status, e.Message)
}

// IsStatus сообщает, что err - APIError с указанным HTTP-статусом
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Config - параметры клиента
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client // если задан, Timeout игнорируется
}

// Client - клиент API. Токен, полученный при регистрации или входе,
// сохраняется и подставляется в последующие запросы.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		token:      cfg.Token,
	}
}

// Token возвращает текущий bearer-токен
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken заменяет bearer-токен; пустая строка - анонимные запросы
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// =============================================================================
// Auth
// =============================================================================

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// =============================================================================
// Products
// =============================================================================

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	path := "/products"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

type productEnvelope struct {
	Product Product `json:"product"`
}

func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	var resp productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	var resp productEnvelope
	if err := c.do(ctx, http.MethodPut, "/products/"+id.String(), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id.String(), nil, nil)
}

func (c *Client) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products/seller/"+sellerID.String(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// =============================================================================
// Users, cart, purchases
// =============================================================================

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/profile", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/users/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart добавляет товар или увеличивает его количество на 1
func (c *Client) AddToCart(ctx context.Context, productID uuid.UUID) (*CartLine, error) {
	body := map[string]string{"productId": productID.String()}
	var resp struct {
		Item CartLine `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/cart", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/users/cart/"+productID.String(), nil, nil)
}

func (c *Client) Checkout(ctx context.Context) (*CheckoutResult, error) {
	var result CheckoutResult
	if err := c.do(ctx, http.MethodPost, "/users/cart/purchase", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Purchases(ctx context.Context) ([]PurchaseItem, error) {
	var items []PurchaseItem
	if err := c.do(ctx, http.MethodGet, "/users/purchases", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// do отправляет запрос и декодирует ответ в out (если out != nil).
// Ответ со статусом вне 2xx превращается в *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return &APIError{Status: status, Message: strings.TrimSpace(http.StatusText(status))}
	}
	return &APIError{Status: status, Message: payload.Error}
}
