package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CartStorage реализует интерфейс ports.CartStorage поверх sqlx
type CartStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewCartStorage(db *sqlx.DB, logger *slog.Logger) *CartStorage {
	return &CartStorage{db: db, logger: logger}
}

// AddToCart добавляет товар в корзину одним upsert-запросом:
// повторное добавление увеличивает quantity на 1.
func (s *CartStorage) AddToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error) {
	start := time.Now()

	var line domain.CartLine
	err := s.db.GetContext(ctx, &line, `
		INSERT INTO cart (id, user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart.quantity + 1
		RETURNING id, user_id, product_id, quantity, created_at
	`, uuid.New(), userID, productID, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to add to cart", "user_id", userID, "product_id", productID, "error", err)
		return nil, mapError("add to cart", err)
	}

	s.logger.Info("cart line upserted",
		"user_id", userID,
		"product_id", productID,
		"quantity", line.Quantity,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &line, nil
}

// RemoveFromCart удаляет строку корзины целиком
func (s *CartStorage) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		s.logger.Error("failed to remove from cart", "user_id", userID, "product_id", productID, "error", err)
		return mapError("remove from cart", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("remove from cart", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("item not found in cart")
	}

	s.logger.Info("cart line removed", "user_id", userID, "product_id", productID)
	return nil
}

// ListCart возвращает строки корзины вместе с данными товаров
func (s *CartStorage) ListCart(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0)
	err := s.db.SelectContext(ctx, &items, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
		       p.title, p.description, p.price, p.image_url, p.category, p.is_available
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
	`, userID)
	if err != nil {
		s.logger.Error("failed to list cart", "user_id", userID, "error", err)
		return nil, mapError("list cart", err)
	}
	return items, nil
}

// checkoutLine - строка корзины, заблокированная на время оформления заказа
type checkoutLine struct {
	ID          uuid.UUID       `db:"id"`
	ProductID   uuid.UUID       `db:"product_id"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
	IsAvailable bool            `db:"is_available"`
}

// Checkout переносит корзину в историю покупок в одной транзакции.
// Любая ошибка откатывает все изменения.
func (s *CartStorage) Checkout(ctx context.Context, userID uuid.UUID, opts domain.CheckoutOptions) (result *domain.CheckoutResult, err error) {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin checkout transaction", "user_id", userID, "error", err)
		return nil, mapError("begin checkout", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("failed to rollback checkout", "user_id", userID, "error", rbErr)
		}
	}()

	var lines []checkoutLine
	err = tx.SelectContext(ctx, &lines, `
		SELECT c.id, c.product_id, c.quantity, p.price, p.is_available
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
		FOR UPDATE
	`, userID)
	if err != nil {
		s.logger.Error("failed to lock cart lines", "user_id", userID, "error", err)
		return nil, mapError("lock cart", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	purchasedAt := opts.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now().UTC()
	}

	result = &domain.CheckoutResult{
		ReceiptID: opts.ReceiptID,
		Items:     make([]domain.Purchase, 0, len(lines)),
		Total:     decimal.Zero,
	}
	productIDs := make([]string, 0, len(lines))
	lineIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		if opts.MarkSold && !line.IsAvailable {
			return nil, domain.NewConflictError("product " + line.ProductID.String() + " is no longer available")
		}
		total := domain.LineTotal(line.Price, line.Quantity)
		result.Items = append(result.Items, domain.Purchase{
			ID:           uuid.New(),
			ReceiptID:    opts.ReceiptID,
			UserID:       userID,
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    line.Price,
			TotalPrice:   total,
			PurchaseDate: purchasedAt,
		})
		result.Total = result.Total.Add(total)
		productIDs = append(productIDs, line.ProductID.String())
		lineIDs = append(lineIDs, line.ID.String())
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO purchases (id, receipt_id, user_id, product_id, quantity, unit_price, total_price, purchase_date)
		VALUES (:id, :receipt_id, :user_id, :product_id, :quantity, :unit_price, :total_price, :purchase_date)
	`, result.Items)
	if err != nil {
		s.logger.Error("failed to insert purchases", "user_id", userID, "error", err)
		return nil, mapError("insert purchases", err)
	}

	if opts.MarkSold {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET is_available = FALSE, updated_at = $2 WHERE id = ANY($1::uuid[])`,
			pq.Array(productIDs), purchasedAt)
		if err != nil {
			s.logger.Error("failed to mark products sold", "user_id", userID, "error", err)
			return nil, mapError("mark products sold", err)
		}
	}

	// удаляются только заблокированные строки; позиции, добавленные параллельно, остаются в корзине
	_, err = tx.ExecContext(ctx, `DELETE FROM cart WHERE id = ANY($1::uuid[])`, pq.Array(lineIDs))
	if err != nil {
		s.logger.Error("failed to clear cart", "user_id", userID, "error", err)
		return nil, mapError("clear cart", err)
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("failed to commit checkout", "user_id", userID, "error", err)
		return nil, mapError("commit checkout", err)
	}

	s.logger.Info("checkout committed",
		"user_id", userID,
		"receipt_id", opts.ReceiptID,
		"items", len(result.Items),
		"total", result.Total.StringFixed(2),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// ListPurchases возвращает историю покупок пользователя, новые первыми
func (s *CartStorage) ListPurchases(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseItem, error) {
	items := make([]domain.PurchaseItem, 0)
	err := s.db.SelectContext(ctx, &items, `
		SELECT pu.id, pu.receipt_id, pu.user_id, pu.product_id, pu.quantity,
		       pu.unit_price, pu.total_price, pu.purchase_date,
		       p.title, p.description, p.image_url, p.category
		FROM purchases pu
		JOIN products p ON p.id = pu.product_id
		WHERE pu.user_id = $1
		ORDER BY pu.purchase_date DESC
	`, userID)
	if err != nil {
		s.logger.Error("failed to list purchases", "user_id", userID, "error", err)
		return nil, mapError("list purchases", err)
	}
	return items, nil
}
