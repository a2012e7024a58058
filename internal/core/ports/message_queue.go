package ports

import (
	"context"

	"github.com/GoArmGo/EcoFinds/internal/messaging/payloads"
)

// CheckoutEventPublisher публикует события об оформленных заказах.
// Используется сценарием оформления заказа после коммита транзакции.
type CheckoutEventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, payload payloads.CheckoutCompletedPayload) error
}

// CheckoutEventConsumer используется воркером для получения событий из очереди
type CheckoutEventConsumer interface {
	// StartConsumingCheckoutEvents начинает прослушивание очереди;
	// handler вызывается для каждого сообщения
	StartConsumingCheckoutEvents(ctx context.Context, handler func(context.Context, payloads.CheckoutCompletedPayload) error) error
}
