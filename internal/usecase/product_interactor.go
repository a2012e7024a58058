package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxPrice - верхняя граница для NUMERIC(12,2)
var maxPrice = decimal.RequireFromString("9999999999.99")

// productUseCase implements ProductUseCase
type productUseCase struct {
	products ports.ProductStorage
	logger   *slog.Logger
}

// NewProductUseCase создает новый экземпляр ProductUseCase
func NewProductUseCase(products ports.ProductStorage, logger *slog.Logger) ProductUseCase {
	return &productUseCase{products: products, logger: logger}
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	products, err := uc.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения каталога: %w", err)
	}
	return products, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := uc.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения товара %s: %w", id, err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product not found")
	}
	return product, nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, sellerID uuid.UUID, in CreateProductInput) (*domain.Product, error) {
	if in.SellerID != nil && *in.SellerID != sellerID {
		return nil, domain.NewForbiddenError("cannot create a product on behalf of another seller")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Condition = strings.TrimSpace(in.Condition)
	if in.Condition == "" {
		in.Condition = domain.DefaultCondition
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := checkProductFields(in.Category, in.Condition, in.Price); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price.Round(2),
		Condition:   in.Condition,
		ImageURL:    in.ImageURL,
		SellerID:    sellerID,
		IsAvailable: true,
	}
	if err := uc.products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("usecase: ошибка создания товара: %w", err)
	}

	uc.logger.Info("product listed", "product_id", product.ID, "seller_id", sellerID)
	return product, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, in UpdateProductInput) (*domain.Product, error) {
	product, err := uc.owned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Title != nil {
		product.Title = strings.TrimSpace(*in.Title)
		if product.Title == "" {
			return nil, domain.NewValidationError("title must not be empty")
		}
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
		if product.Description == "" {
			return nil, domain.NewValidationError("description must not be empty")
		}
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Condition != nil {
		product.Condition = strings.TrimSpace(*in.Condition)
	}
	if in.Price != nil {
		product.Price = in.Price.Round(2)
	}
	if in.ImageURL != nil {
		product.ImageURL = in.ImageURL
		if *in.ImageURL == "" {
			product.ImageURL = nil
		}
	}
	if in.IsAvailable != nil {
		product.IsAvailable = *in.IsAvailable
	}

	if err := checkProductFields(product.Category, product.Condition, product.Price); err != nil {
		return nil, err
	}
	if err := uc.products.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("usecase: ошибка обновления товара %s: %w", productID, err)
	}

	uc.logger.Info("product updated", "product_id", productID, "seller_id", userID)
	return product, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := uc.owned(ctx, userID, productID); err != nil {
		return err
	}
	if err := uc.products.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("usecase: ошибка удаления товара %s: %w", productID, err)
	}

	uc.logger.Info("product deleted", "product_id", productID, "seller_id", userID)
	return nil
}

func (uc *productUseCase) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error) {
	products, err := uc.products.ListProductsBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения товаров продавца %s: %w", sellerID, err)
	}
	return products, nil
}

func (uc *productUseCase) Categories() []domain.Category {
	categories := make([]domain.Category, len(domain.Categories))
	copy(categories, domain.Categories)
	return categories
}

// owned возвращает товар, если он существует и принадлежит userID
func (uc *productUseCase) owned(ctx context.Context, userID, productID uuid.UUID) (*domain.Product, error) {
	product, err := uc.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != userID {
		uc.logger.Warn("product ownership check failed", "product_id", productID, "user_id", userID)
		return nil, domain.NewForbiddenError("only the seller can modify this product")
	}
	return product, nil
}

func checkProductFields(category, condition string, price decimal.Decimal) error {
	if !domain.IsKnownCategory(category) {
		return domain.NewValidationError(fmt.Sprintf("unknown category %q", category))
	}
	if !domain.IsKnownCondition(condition) {
		return domain.NewValidationError(fmt.Sprintf("unknown condition %q", condition))
	}
	if !price.IsPositive() {
		return domain.NewValidationError("price must be greater than zero")
	}
	if price.GreaterThan(maxPrice) {
		return domain.NewValidationError("price is too large")
	}
	return nil
}
