package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/messaging/payloads"
	"github.com/GoArmGo/EcoFinds/internal/usecase"
)

// runWorker потребляет события оформления заказа и архивирует чеки до отмены ctx
func runWorker(
	ctx context.Context,
	consumer ports.CheckoutEventConsumer,
	receipts usecase.ReceiptUseCase,
	logger *slog.Logger,
) error {
	logger.Info("worker started, waiting for checkout events")

	messageHandler := func(ctx context.Context, payload payloads.CheckoutCompletedPayload) error {
		start := time.Now()
		url, err := receipts.ArchiveReceipt(ctx, payload)
		if err != nil {
			return err
		}
		logger.Info("receipt archived",
			"receipt_id", payload.ReceiptID,
			"user_id", payload.UserID,
			"url", url,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	if err := consumer.StartConsumingCheckoutEvents(ctx, messageHandler); err != nil {
		return fmt.Errorf("failed to start RabbitMQ consumer: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping worker")
	return nil
}

// runSeed однократно заполняет базу демонстрационными данными
func runSeed(ctx context.Context, seeder Seeder, logger *slog.Logger) error {
	report, err := seeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Info("seed completed", "users_created", report.Users, "products_created", report.Products)
	return nil
}
