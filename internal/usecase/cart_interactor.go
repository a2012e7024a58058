package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/messaging/payloads"
	"github.com/GoArmGo/EcoFinds/internal/metrics"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// cartUseCase implements CartUseCase
type cartUseCase struct {
	products  ports.ProductStorage
	cart      ports.CartStorage
	publisher ports.CheckoutEventPublisher // может быть nil
	policy    CheckoutPolicy
	logger    *slog.Logger

	now       func() time.Time
	receiptID func() string
}

// NewCartUseCase создает новый экземпляр CartUseCase.
// publisher может быть nil: тогда события об оформленных заказах не публикуются.
func NewCartUseCase(
	products ports.ProductStorage,
	cart ports.CartStorage,
	publisher ports.CheckoutEventPublisher,
	policy CheckoutPolicy,
	logger *slog.Logger,
) CartUseCase {
	return &cartUseCase{
		products:  products,
		cart:      cart,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		receiptID: func() string { return ulid.Make().String() },
	}
}

func (uc *cartUseCase) AddToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error) {
	product, err := uc.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения товара %s: %w", productID, err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product not found")
	}
	if !product.IsAvailable {
		return nil, domain.NewValidationError("product is no longer available")
	}
	if product.SellerID == userID {
		return nil, domain.NewValidationError("cannot add your own product to the cart")
	}

	line, err := uc.cart.AddToCart(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка добавления в корзину: %w", err)
	}
	return line, nil
}

func (uc *cartUseCase) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	if err := uc.cart.RemoveFromCart(ctx, userID, productID); err != nil {
		return fmt.Errorf("usecase: ошибка удаления из корзины: %w", err)
	}
	return nil
}

func (uc *cartUseCase) Cart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	items, err := uc.cart.ListCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения корзины: %w", err)
	}
	return domain.NewCart(items), nil
}

func (uc *cartUseCase) Checkout(ctx context.Context, userID uuid.UUID) (*domain.CheckoutResult, error) {
	opts := domain.CheckoutOptions{
		ReceiptID:   uc.receiptID(),
		PurchasedAt: uc.now(),
		MarkSold:    uc.policy.MarkSold,
	}

	result, err := uc.cart.Checkout(ctx, userID, opts)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			metrics.RecordCheckout(metrics.CheckoutEmptyCart, 0)
			return nil, err
		}
		metrics.RecordCheckout(metrics.CheckoutFailed, 0)
		return nil, fmt.Errorf("usecase: ошибка оформления заказа: %w", err)
	}
	metrics.RecordCheckout(metrics.CheckoutSucceeded, len(result.Items))

	uc.logger.Info("checkout completed",
		"user_id", userID,
		"receipt_id", result.ReceiptID,
		"items", len(result.Items),
		"total", result.Total.StringFixed(2),
	)

	uc.publishCompleted(ctx, userID, opts.PurchasedAt, result)
	return result, nil
}

// publishCompleted отправляет событие после коммита. Ошибка публикации
// только логируется: заказ уже оформлен.
func (uc *cartUseCase) publishCompleted(ctx context.Context, userID uuid.UUID, purchasedAt time.Time, result *domain.CheckoutResult) {
	if uc.publisher == nil {
		return
	}

	payload := payloads.CheckoutCompletedPayload{
		ReceiptID:   result.ReceiptID,
		UserID:      userID.String(),
		Items:       make([]payloads.PurchasedItem, 0, len(result.Items)),
		Total:       result.Total,
		PurchasedAt: purchasedAt,
	}
	for _, p := range result.Items {
		payload.Items = append(payload.Items, payloads.PurchasedItem{
			PurchaseID: p.ID.String(),
			ProductID:  p.ProductID.String(),
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: p.TotalPrice,
		})
	}

	// запрос мог уже завершиться, событие все равно нужно отправить
	if err := uc.publisher.PublishCheckoutCompleted(context.WithoutCancel(ctx), payload); err != nil {
		uc.logger.Error("failed to publish checkout event",
			"receipt_id", result.ReceiptID,
			"user_id", userID,
			"error", err,
		)
	}
}

func (uc *cartUseCase) Purchases(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseItem, error) {
	items, err := uc.cart.ListPurchases(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения истории покупок: %w", err)
	}
	return items, nil
}
