package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	"github.com/wyfcoding/inventoryorder/pkg/mq"
)

const (
	topicProductCreated      = "catalog.product.created"
	topicProductPriceChanged = "catalog.product.price_changed"
	topicProductStockChanged = "catalog.product.stock_changed"
)

// kafkaPublisher 基于 Kafka 的商品事件发布者实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建商品事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) PublishProductCreated(ctx context.Context, event domain.ProductCreatedEvent) error {
	return p.producer.SendMessage(ctx, topicProductCreated, strconv.FormatUint(uint64(event.ProductID), 10), event)
}

func (p *kafkaPublisher) PublishProductPriceChanged(ctx context.Context, event domain.ProductPriceChangedEvent) error {
	return p.producer.SendMessage(ctx, topicProductPriceChanged, strconv.FormatUint(uint64(event.ProductID), 10), event)
}

func (p *kafkaPublisher) PublishProductStockChanged(ctx context.Context, event domain.ProductStockChangedEvent) error {
	return p.producer.SendMessage(ctx, topicProductStockChanged, strconv.FormatUint(uint64(event.ProductID), 10), event)
}

// NoopPublisher 未配置 Kafka 时使用的空实现
type NoopPublisher struct{}

func (NoopPublisher) PublishProductCreated(context.Context, domain.ProductCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishProductPriceChanged(context.Context, domain.ProductPriceChangedEvent) error {
	return nil
}

func (NoopPublisher) PublishProductStockChanged(context.Context, domain.ProductStockChangedEvent) error {
	return nil
}
