package application

import (
	"context"

	"github.com/wyfcoding/inventoryorder/internal/order/domain"
)

// OrderQueryService 处理订单相关的查询操作
type OrderQueryService struct {
	orders domain.OrderRepository
}

// NewOrderQueryService 创建新的 OrderQueryService 实例
func NewOrderQueryService(orders domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// GetOrder 获取订单及全部订单项
func (q *OrderQueryService) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	order, err := q.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &domain.OrderNotFoundError{OrderID: orderID}
	}
	return order, nil
}
