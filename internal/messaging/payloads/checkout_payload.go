package payloads

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutCompletedPayload публикуется в RabbitMQ после успешного оформления заказа
// и используется воркером для архивации чека.
type CheckoutCompletedPayload struct {
	ReceiptID   string          `json:"receipt_id"`
	UserID      string          `json:"user_id"`
	Items       []PurchasedItem `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

// PurchasedItem - одна позиция чека
type PurchasedItem struct {
	PurchaseID string          `json:"purchase_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
