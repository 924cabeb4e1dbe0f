// Package messaging 将订单领域事件发布到 Kafka
package messaging

import (
	"context"
	"time"

	"github.com/atlasquant/tradedesk/internal/order/domain"
	"github.com/atlasquant/tradedesk/pkg/mq"
)

const orderCreatedTopic = "tradedesk.order.created"

// OrderCreatedEvent 订单创建事件载荷
type OrderCreatedEvent struct {
	OrderID       uint      `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Type          string    `json:"type"`
	Quantity      string    `json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

type kafkaEventPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaEventPublisher 创建基于 Kafka 的订单事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaEventPublisher{producer: producer}
}

func (p *kafkaEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	event := OrderCreatedEvent{
		OrderID:       order.ID,
		ClientOrderID: order.ClientOrderID,
		Symbol:        order.Symbol,
		Side:          string(order.Side),
		Type:          string(order.Type),
		Quantity:      order.Quantity.String(),
		CreatedAt:     order.CreatedAt,
	}
	return p.producer.SendMessage(ctx, orderCreatedTopic, order.ClientOrderID, event)
}
