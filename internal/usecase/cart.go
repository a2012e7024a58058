package usecase

import (
	"context"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/google/uuid"
)

// CartUseCase определяет бизнес-логику корзины и истории покупок
type CartUseCase interface {
	// AddToCart добавляет товар в корзину или увеличивает его количество на 1
	AddToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error)

	// RemoveFromCart удаляет товар из корзины; NotFoundError, если его там не было
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error

	// Cart возвращает содержимое корзины с итоговой суммой
	Cart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)

	// Checkout оформляет заказ: все строки корзины становятся покупками
	// с общим номером чека, корзина очищается
	Checkout(ctx context.Context, userID uuid.UUID) (*domain.CheckoutResult, error)

	// Purchases возвращает историю покупок, новые первыми
	Purchases(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseItem, error)
}

// CheckoutPolicy управляет побочными эффектами оформления заказа
type CheckoutPolicy struct {
	// MarkSold снимает купленные товары с продажи
	MarkSold bool
}
