package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-variation-service/internal/inventory"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID         string             `json:"id"`
	MerchantID string             `json:"merchant_id"`
	Items      []OrderItemPayload `json:"items"`
}

// OrderItemPayload carries the cart line identity. option_ids may be a JSON
// array or a JSON string holding one.
type OrderItemPayload struct {
	ProductID int64           `json:"product_id"`
	OptionIDs model.OptionIDs `json:"option_ids"`
	Quantity  int64           `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCreated" {
		return
	}

	l.logger.Info("Processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	input := &dto.ReserveStockInput{
		MerchantID: event.Payload.MerchantID,
		OrderID:    event.Payload.ID,
		Items:      make([]dto.ReserveItem, 0, len(event.Payload.Items)),
	}
	for _, item := range event.Payload.Items {
		input.Items = append(input.Items, dto.ReserveItem{
			ProductID: item.ProductID,
			OptionIDs: item.OptionIDs,
			Quantity:  item.Quantity,
		})
	}

	if _, err := l.uc.ReserveStock(ctx, input); err != nil {
		l.logger.Error("Failed to reserve stock for order",
			zap.String("order_id", event.Payload.ID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
