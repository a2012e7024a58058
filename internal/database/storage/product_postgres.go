package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, title, description, category, price, condition, image_url, seller_id, is_available, created_at, updated_at`

// ProductStorage реализует интерфейс ports.ProductStorage поверх sqlx
type ProductStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewProductStorage(db *sqlx.DB, logger *slog.Logger) *ProductStorage {
	return &ProductStorage{db: db, logger: logger}
}

// CreateProduct сохраняет новый товар
func (s *ProductStorage) CreateProduct(ctx context.Context, product *domain.Product) error {
	start := time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :title, :description, :category, :price, :condition, :image_url, :seller_id, :is_available, :created_at, :updated_at)
	`, product)
	if err != nil {
		s.logger.Error("failed to insert product", "seller_id", product.SellerID, "error", err)
		return mapError("insert product", err)
	}

	s.logger.Info("product created",
		"product_id", product.ID,
		"seller_id", product.SellerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetProductByID возвращает товар или (nil, nil), если его нет
func (s *ProductStorage) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := s.db.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("product not found", "product_id", id)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get product", "product_id", id, "error", err)
		return nil, mapError("get product", err)
	}
	return &product, nil
}

// ListProducts возвращает доступные товары с учетом фильтров, новые первыми.
// Поиск - подстрока в title или description (LIKE, с учетом регистра).
func (s *ProductStorage) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	start := time.Now()

	query := `SELECT ` + productColumns + ` FROM products WHERE is_available = TRUE`
	args := make([]interface{}, 0, 2)

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		query += fmt.Sprintf(" AND (title LIKE $%d OR description LIKE $%d)", len(args), len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	products := make([]domain.Product, 0)
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		s.logger.Error("failed to list products", "search", filter.Search, "category", filter.Category, "error", err)
		return nil, mapError("list products", err)
	}

	s.logger.Debug("products listed",
		"count", len(products),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return products, nil
}

// ListProductsBySeller возвращает все товары продавца, включая недоступные
func (s *ProductStorage) ListProductsBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	err := s.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		s.logger.Error("failed to list seller products", "seller_id", sellerID, "error", err)
		return nil, mapError("list seller products", err)
	}
	return products, nil
}

// UpdateProduct перезаписывает изменяемые поля товара
func (s *ProductStorage) UpdateProduct(ctx context.Context, product *domain.Product) error {
	start := time.Now()

	product.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE products SET
			title = :title,
			description = :description,
			category = :category,
			price = :price,
			condition = :condition,
			image_url = :image_url,
			is_available = :is_available,
			updated_at = :updated_at
		WHERE id = :id
	`, product)
	if err != nil {
		s.logger.Error("failed to update product", "product_id", product.ID, "error", err)
		return mapError("update product", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("update product", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("product not found")
	}

	s.logger.Info("product updated",
		"product_id", product.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteProduct удаляет товар; строки корзин удаляются каскадно.
// Товар с историей покупок удалить нельзя (ConflictError).
func (s *ProductStorage) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete product", "product_id", id, "error", err)
		return mapError("delete product", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("delete product", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("product not found")
	}

	s.logger.Info("product deleted",
		"product_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
