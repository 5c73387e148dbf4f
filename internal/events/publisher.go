package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/velora/beauty-orders-api/internal/model"
)

const orderQueueName = "order.events"

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderCancelled     = "order.cancelled"
)

// Publisher pushes order lifecycle events onto RabbitMQ for downstream
// consumers (fulfillment, notifications). Publishing is best-effort: the
// order transaction has already committed, so a broker failure is logged
// and the request still succeeds.
type Publisher struct {
	channel *amqp.Channel
	log     *slog.Logger
}

func NewPublisher(ch *amqp.Channel, log *slog.Logger) *Publisher {
	return &Publisher{channel: ch, log: log}
}

// Setup declares the durable event queue.
func Setup(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare order event queue: %w", err)
	}
	return nil
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, eventType string, order *model.Order) {
	if p == nil || p.channel == nil {
		return
	}

	body, err := json.Marshal(model.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		p.log.Error("marshal order event", "type", eventType, "order_id", order.ID, "error", err)
		return
	}

	err = p.channel.PublishWithContext(ctx, "", orderQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		p.log.Error("publish order event", "type", eventType, "order_id", order.ID, "error", err)
	}
}
