package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GoArmGo/EcoFinds/internal/config"
	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// CheckoutHandler обрабатывает одно событие об оформленном заказе
type CheckoutHandler func(context.Context, payloads.CheckoutCompletedPayload) error

// Client представляет собой клиент RabbitMQ.
// Реализует ports.CheckoutEventPublisher и ports.CheckoutEventConsumer.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger

	publishMu sync.Mutex
	closeOnce sync.Once
}

// NewClient подключается к RabbitMQ и объявляет очередь событий оформления заказа
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// идемпотентно: очередь создается, только если ее еще нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   q,
		logger:  logger,
	}, nil
}

// Close закрывает канал и соединение RabbitMQ
func (c *Client) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		if c.channel != nil {
			if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				errs = append(errs, fmt.Errorf("close channel: %w", err))
			}
		}
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				errs = append(errs, fmt.Errorf("close connection: %w", err))
			}
		}
		c.logger.Info("RabbitMQ connection closed")
	})
	return errors.Join(errs...)
}

// PublishCheckoutCompleted публикует событие об оформленном заказе
func (c *Client) PublishCheckoutCompleted(ctx context.Context, payload payloads.CheckoutCompletedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    payload.ReceiptID,
			Timestamp:    payload.PurchasedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Debug("checkout event published", "queue", c.queue.Name, "receipt_id", payload.ReceiptID)
	return nil
}

// StartConsumingCheckoutEvents регистрирует потребителя и обрабатывает сообщения
// в отдельной горутине до отмены ctx или закрытия канала.
func (c *Client) StartConsumingCheckoutEvents(ctx context.Context, handler func(context.Context, payloads.CheckoutCompletedPayload) error) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack, подтверждаем вручную
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ delivery channel closed, stopping consumer")
					return
				}
				handleDelivery(ctx, msg, handler, c.logger)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

// deliveryOutcome - чем закончилась обработка сообщения
type deliveryOutcome int

const (
	outcomeAcked deliveryOutcome = iota + 1
	outcomeDropped
	outcomeRequeued
)

// handleDelivery разбирает сообщение и вызывает handler.
// Неразборчивые и невалидные сообщения отклоняются без возврата в очередь,
// остальные ошибки возвращают сообщение в очередь.
func handleDelivery(ctx context.Context, msg amqp.Delivery, handler CheckoutHandler, logger *slog.Logger) deliveryOutcome {
	var payload payloads.CheckoutCompletedPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		logger.Warn("dropping undecodable message", "error", err, "message_id", msg.MessageId)
		if err := msg.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return outcomeDropped
	}

	if err := handler(ctx, payload); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			logger.Warn("dropping invalid checkout event", "error", err, "receipt_id", payload.ReceiptID)
			if err := msg.Nack(false, false); err != nil {
				logger.Error("failed to nack message", "error", err)
			}
			return outcomeDropped
		}

		logger.Error("failed to process checkout event, requeueing", "error", err, "receipt_id", payload.ReceiptID)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return outcomeRequeued
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
	logger.Debug("checkout event processed", "receipt_id", payload.ReceiptID)
	return outcomeAcked
}
