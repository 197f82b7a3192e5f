package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/inventoryorder/internal/order/domain"
	"github.com/wyfcoding/inventoryorder/pkg/mq"
)

const (
	topicOrderCreated       = "order.created"
	topicOrderStatusChanged = "order.status_changed"
)

// kafkaPublisher 基于 Kafka 的订单事件发布者实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建订单事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.producer.SendMessage(ctx, topicOrderCreated, strconv.FormatUint(uint64(event.OrderID), 10), event)
}

func (p *kafkaPublisher) PublishOrderStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) error {
	return p.producer.SendMessage(ctx, topicOrderStatusChanged, strconv.FormatUint(uint64(event.OrderID), 10), event)
}

// NoopPublisher 未配置 Kafka 时使用的空实现
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, domain.OrderCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishOrderStatusChanged(context.Context, domain.OrderStatusChangedEvent) error {
	return nil
}
