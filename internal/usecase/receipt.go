package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/core/ports"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/messaging/payloads"
	"github.com/GoArmGo/EcoFinds/internal/metrics"
	"github.com/oklog/ulid/v2"
)

// ReceiptUseCase архивирует чеки оформленных заказов; используется воркером
type ReceiptUseCase interface {
	// ArchiveReceipt сохраняет чек в объектное хранилище и возвращает его URL.
	// Некорректное событие возвращает ValidationError: повторять его бессмысленно.
	ArchiveReceipt(ctx context.Context, event payloads.CheckoutCompletedPayload) (string, error)
}

// receiptDocument - содержимое JSON-файла чека
type receiptDocument struct {
	payloads.CheckoutCompletedPayload
	ArchivedAt time.Time `json:"archived_at"`
}

type receiptUseCase struct {
	files  ports.FileStorage
	logger *slog.Logger
	now    func() time.Time
}

func NewReceiptUseCase(files ports.FileStorage, logger *slog.Logger) ReceiptUseCase {
	return &receiptUseCase{
		files:  files,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ReceiptKey возвращает ключ объекта чека: receipts/<user_id>/<receipt_id>.json
func ReceiptKey(userID, receiptID string) string {
	return fmt.Sprintf("receipts/%s/%s.json", userID, receiptID)
}

func (uc *receiptUseCase) ArchiveReceipt(ctx context.Context, event payloads.CheckoutCompletedPayload) (string, error) {
	if event.UserID == "" || len(event.Items) == 0 {
		return "", domain.NewValidationError("checkout event has no user or items")
	}
	if _, err := ulid.ParseStrict(event.ReceiptID); err != nil {
		return "", domain.NewValidationError(fmt.Sprintf("malformed receipt id %q", event.ReceiptID))
	}

	body, err := json.MarshalIndent(receiptDocument{CheckoutCompletedPayload: event, ArchivedAt: uc.now()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("usecase: ошибка сериализации чека %s: %w", event.ReceiptID, err)
	}

	key := ReceiptKey(event.UserID, event.ReceiptID)
	url, err := uc.files.UploadFile(ctx, key, body, "application/json")
	if err != nil {
		metrics.RecordReceiptArchived(false)
		return "", fmt.Errorf("usecase: ошибка загрузки чека %s: %w", event.ReceiptID, err)
	}
	metrics.RecordReceiptArchived(true)

	uc.logger.Info("receipt archived",
		"receipt_id", event.ReceiptID,
		"user_id", event.UserID,
		"key", key,
	)
	return url, nil
}
