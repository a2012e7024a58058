package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCondition используется, если продавец не указал состояние товара
const DefaultCondition = "good"

func init() {
	// мобильный клиент ожидает цены числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true
}

// Product представляет объявление о продаже,
// соответствует таблице products в бд
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Condition   string          `json:"condition" db:"condition"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
	SellerID    uuid.UUID       `json:"seller_id" db:"seller_id"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter описывает фильтры публичного каталога.
// Пустые поля не участвуют в отборе.
type ProductFilter struct {
	Search   string
	Category string
}
