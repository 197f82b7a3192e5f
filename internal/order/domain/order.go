// Package domain 包含订单服务的领域模型
package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	// OrderStatusPending 初始状态，订单创建时的唯一可达状态
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusShipped 终态
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusCancelled 终态
	OrderStatusCancelled OrderStatus = "cancelled"
)

// validTransitions 状态机转移表，终态没有任何出边
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {},
	OrderStatusCancelled: {},
}

// Valid 判断是否为已知状态
// 持久化层读到未知状态视为数据完整性错误，不做静默纠正
func (s OrderStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo 判断是否允许转移到目标状态，自转移一律拒绝
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Order 订单实体，与订单项在同一事务中整体创建
type Order struct {
	gorm.Model
	Status OrderStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单项
// PriceAtOrder 是下单时刻的商品价格快照，之后永不随商品价格变动
type OrderItem struct {
	gorm.Model
	OrderID      uint            `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID    uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	PriceAtOrder decimal.Decimal `gorm:"column:price_at_order;type:decimal(10,2);not null" json:"price_at_order"`
}

func (OrderItem) TableName() string { return "order_items" }

// Total 按价格快照计算订单总额
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.PriceAtOrder.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// 保存订单及其订单项
	Save(ctx context.Context, order *Order) error
	// 获取订单（订单项一次性加载），不存在时返回 nil
	Get(ctx context.Context, id uint) (*Order, error)
	// 加排他锁获取订单（不加载订单项），不存在时返回 nil
	GetForUpdate(ctx context.Context, id uint) (*Order, error)
	// 更新订单状态
	UpdateStatus(ctx context.Context, id uint, status OrderStatus) error
}

// EventPublisher 订单事件发布者接口
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error
}
