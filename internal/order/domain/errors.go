package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyOrder 订单不含任何订单项
var ErrEmptyOrder = errors.New("order must contain at least one item")

// ErrInvalidQuantity 订单项数量非正
var ErrInvalidQuantity = errors.New("order item quantity must be positive")

// ProductNotFoundError 引用的商品不存在
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

// OrderNotFoundError 订单不存在
type OrderNotFoundError struct {
	OrderID uint
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order with ID %d not found", e.OrderID)
}

// InsufficientStockError 库存不足
// 单行不足即整单失败，不产生任何部分效果
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// InvalidTransitionError 不允许的状态转移
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// ContentionError 锁等待耗尽或事务冲突，调用方可安全重试
// 重试会从头重新校验库存，效果幂等
type ContentionError struct {
	Cause error
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("transaction contention, retry the operation: %v", e.Cause)
}

func (e *ContentionError) Unwrap() error { return e.Cause }
