package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User - публичные поля пользователя
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse - ответ на регистрацию и вход
type AuthResponse struct {
	Message   string    `json:"message"`
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition"`
	ImageURL    *string         `json:"image_url"`
	SellerID    uuid.UUID       `json:"seller_id"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductQuery - фильтры каталога; пустые поля не отправляются
type ProductQuery struct {
	Search   string
	Category string
}

type CreateProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// UpdateProductRequest - частичное обновление; nil-поля не меняются
type UpdateProductRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Condition   *string          `json:"condition,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

type CartLine struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	CartLine
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	Category    string          `json:"category"`
	IsAvailable bool            `json:"is_available"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type Purchase struct {
	ID           uuid.UUID       `json:"id"`
	ReceiptID    string          `json:"receipt_id"`
	UserID       uuid.UUID       `json:"user_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	PurchaseDate time.Time       `json:"purchase_date"`
}

// PurchaseItem - запись истории покупок с данными товара
type PurchaseItem struct {
	Purchase
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
	Category    string  `json:"category"`
}

type CheckoutResult struct {
	Message        string          `json:"message"`
	ReceiptID      string          `json:"receipt_id"`
	PurchasedItems []Purchase      `json:"purchasedItems"`
	Total          decimal.Decimal `json:"total"`
}
