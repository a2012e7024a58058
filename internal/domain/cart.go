package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine представляет строку корзины (пользователь, товар, количество),
// соответствует таблице cart в бд. Пара (user_id, product_id) уникальна.
type CartLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem - строка корзины вместе с данными товара для отображения
type CartItem struct {
	CartLine
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
	Category    string          `json:"category" db:"category"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"-"`
}

// Cart - содержимое корзины пользователя с итоговой суммой
type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewCart считает подытоги по строкам и общую сумму
func NewCart(items []CartItem) *Cart {
	cart := &Cart{Items: make([]CartItem, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		item.Subtotal = LineTotal(item.Price, item.Quantity)
		cart.Total = cart.Total.Add(item.Subtotal)
		cart.Items = append(cart.Items, item)
	}
	return cart
}

// LineTotal возвращает стоимость строки: quantity × price
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
