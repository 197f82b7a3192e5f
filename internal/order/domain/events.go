package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID    uint             `json:"order_id"`
	Status     OrderStatus      `json:"status"`
	Items      []OrderItemEvent `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	OccurredOn time.Time        `json:"occurred_on"`
}

// OrderItemEvent 订单项载荷
type OrderItemEvent struct {
	ProductID    uint            `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID    uint        `json:"order_id"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	OccurredOn time.Time   `json:"occurred_on"`
}
