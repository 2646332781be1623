package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "payment.completed"
	PaymentEventFailed    PaymentEventType = "payment.failed"
	PaymentEventRefunded  PaymentEventType = "payment.refunded"
)

// PaymentEvent represents a payment-related event.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	PaymentID string           `json:"payment_id"`
	OrderID   string           `json:"order_id"`
	Status    string           `json:"status"`
	Data      json.RawMessage  `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// PaymentHandler applies payment outcomes to orders.
type PaymentHandler interface {
	MarkPaid(ctx context.Context, orderID, paymentStatus string) error
	MarkFailed(ctx context.Context, orderID, paymentStatus string) error
	MarkRefunded(ctx context.Context, orderID, paymentStatus string) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer consumes payment events from Kafka.
type KafkaConsumer struct {
	reader  messageReader
	handler PaymentHandler
	logger  *logging.LoggerV2
	stopCh  chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based payment event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, handler PaymentHandler) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return newConsumer(reader, handler)
}

func newConsumer(r messageReader, handler PaymentHandler) *KafkaConsumer {
	return &KafkaConsumer{
		reader:  r,
		handler: handler,
		logger:  logging.NewLoggerV2("payment-consumer"),
		stopCh:  make(chan struct{}),
	}
}

// Start consumes events until ctx is done or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}
	if event.OrderID == "" {
		c.logger.Warn("Payment event without order id", logging.Fields{"event_id": event.ID})
		return
	}

	var apply func(context.Context, string, string) error
	switch event.Type {
	case PaymentEventCompleted:
		apply = c.handler.MarkPaid
	case PaymentEventFailed:
		apply = c.handler.MarkFailed
	case PaymentEventRefunded:
		apply = c.handler.MarkRefunded
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
		return
	}

	c.logger.Info("Handling payment event", logging.Fields{
		"type":       event.Type,
		"payment_id": event.PaymentID,
		"order_id":   event.OrderID,
	})

	if err := apply(ctx, event.OrderID, event.Status); err != nil {
		c.logger.Error("Failed to update order from payment event", logging.Fields{
			"order_id": event.OrderID,
			"type":     event.Type,
			"error":    err.Error(),
		})
	}
}
