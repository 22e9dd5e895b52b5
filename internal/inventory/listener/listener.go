package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/internal/inventory"
	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/pkg/broker"
	"github.com/kedai/backoffice-service/pkg/logger"
)

// SalesListener consumes completed POS orders and applies them to stock.
type SalesListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewSalesListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.ZapLogger) *SalesListener {
	return &SalesListener{consumer: consumer, uc: uc, logger: log}
}

func (l *SalesListener) Start(ctx context.Context) {
	l.logger.Info("Starting sales listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping sales listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
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

type OrderCompletedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID    string             `json:"id"`
	Items []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

func (l *SalesListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCompleted" {
		return
	}

	l.logger.Info("Processing OrderCompleted event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		err := l.uc.ApplySale(ctx, &dto.SaleInput{
			ItemID:   item.MenuItemID,
			Quantity: item.Quantity,
			OrderID:  event.Payload.ID,
		})
		if err != nil {
			l.logger.Error("Failed to apply sale to stock",
				zap.String("order_id", event.Payload.ID),
				zap.String("menu_item_id", item.MenuItemID),
				zap.Error(err),
			)
		}
	}
}
