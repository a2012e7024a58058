package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase - запись истории покупок. После создания не изменяется.
// Все покупки одного оформления заказа делят общий ReceiptID (ULID).
type Purchase struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ReceiptID    string          `json:"receipt_id" db:"receipt_id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price" db:"total_price"`
	PurchaseDate time.Time       `json:"purchase_date" db:"purchase_date"`
}

// PurchaseItem - покупка вместе с данными товара для истории
type PurchaseItem struct {
	Purchase
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	ImageURL    *string `json:"image_url" db:"image_url"`
	Category    string  `json:"category" db:"category"`
}

// CheckoutOptions передаются хранилищу при оформлении заказа
type CheckoutOptions struct {
	ReceiptID   string
	PurchasedAt time.Time
	// MarkSold снимает купленные товары с продажи в той же транзакции
	MarkSold bool
}

// CheckoutResult - итог оформления заказа
type CheckoutResult struct {
	ReceiptID string          `json:"receipt_id"`
	Items     []Purchase      `json:"purchasedItems"`
	Total     decimal.Decimal `json:"total"`
}
