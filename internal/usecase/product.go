package usecase

import (
	"context"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput - данные нового объявления.
// SellerID необязателен; если указан, должен совпадать с автором запроса.
type CreateProductInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,url"`
	SellerID    *uuid.UUID      `json:"seller_id"`
}

// UpdateProductInput - частичное обновление: nil-поля не меняются
type UpdateProductInput struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Condition   *string          `json:"condition"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool            `json:"is_available"`
}

// ProductUseCase определяет бизнес-логику каталога товаров
type ProductUseCase interface {
	// ListProducts возвращает доступные товары, отфильтрованные по поиску и категории
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	// GetProduct возвращает товар; NotFoundError, если его нет
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// CreateProduct создает объявление от имени sellerID
	CreateProduct(ctx context.Context, sellerID uuid.UUID, in CreateProductInput) (*domain.Product, error)

	// UpdateProduct меняет товар; доступно только владельцу
	UpdateProduct(ctx context.Context, userID, productID uuid.UUID, in UpdateProductInput) (*domain.Product, error)

	// DeleteProduct удаляет товар; доступно только владельцу
	DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error

	// ListBySeller возвращает все товары продавца
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error)

	// Categories возвращает справочник категорий
	Categories() []domain.Category
}
