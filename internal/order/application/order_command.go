// Package application 实现订单事务引擎与订单状态机
package application

import (
	"context"
	"errors"
	"sort"
	"time"

	catalogapp "github.com/wyfcoding/inventoryorder/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	"github.com/wyfcoding/inventoryorder/internal/order/domain"
	"github.com/wyfcoding/inventoryorder/pkg/db"
	"github.com/wyfcoding/inventoryorder/pkg/logger"
	"github.com/wyfcoding/inventoryorder/pkg/metrics"
	"gorm.io/gorm"
)

// OrderItemInput 单条下单请求行
type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateOrderCommand 下单命令
type CreateOrderCommand struct {
	Items []OrderItemInput
}

// OrderCommandService 处理订单相关的命令操作
type OrderCommandService struct {
	orders        domain.OrderRepository
	products      catalogdomain.ProductRepository
	cache         catalogapp.ProductCache
	publisher     domain.EventPublisher
	catalogEvents catalogdomain.EventPublisher
	collector     metrics.Collector
	db            *gorm.DB
}

// NewOrderCommandService 创建新的 OrderCommandService 实例
func NewOrderCommandService(
	orders domain.OrderRepository,
	products catalogdomain.ProductRepository,
	cache catalogapp.ProductCache,
	publisher domain.EventPublisher,
	catalogEvents catalogdomain.EventPublisher,
	collector metrics.Collector,
	gdb *gorm.DB,
) *OrderCommandService {
	return &OrderCommandService{
		orders:        orders,
		products:      products,
		cache:         cache,
		publisher:     publisher,
		catalogEvents: catalogEvents,
		collector:     collector,
		db:            gdb,
	}
}

// CreateOrder 下单
//
// 同一事务内完成：按升序锁定涉及的商品行、校验存在性与库存、
// 创建订单与订单项、扣减库存。任何一步失败，整个操作无副作用。
func (c *OrderCommandService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	defer logger.LogDuration(ctx, "Order creation finished")()

	if len(cmd.Items) == 0 {
		c.collector.RecordOrderRejected("empty_order")
		return nil, domain.ErrEmptyOrder
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			c.collector.RecordOrderRejected("invalid_quantity")
			return nil, domain.ErrInvalidQuantity
		}
	}

	// 同一商品出现多行时按商品聚合需求量，锁定与校验只针对去重后的行
	aggregated := make(map[uint]int, len(cmd.Items))
	for _, item := range cmd.Items {
		aggregated[item.ProductID] += item.Quantity
	}
	ids := make([]uint, 0, len(aggregated))
	for id := range aggregated {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var order *domain.Order
	var locked map[uint]*catalogdomain.Product
	err := c.db.Transaction(func(tx *gorm.DB) error {
		txCtx := db.WithTx(ctx, tx)

		products, err := c.products.FindForUpdate(txCtx, ids)
		if err != nil {
			return err
		}
		locked = products

		for _, id := range ids {
			if _, ok := products[id]; !ok {
				return &domain.ProductNotFoundError{ProductID: id}
			}
		}

		// 先整体校验库存再做任何修改，保证全有或全无
		for _, id := range ids {
			product := products[id]
			if product.StockQuantity < aggregated[id] {
				return &domain.InsufficientStockError{
					ProductID: id,
					Available: product.StockQuantity,
					Requested: aggregated[id],
				}
			}
		}

		// 订单项按原始请求行逐行创建，重复商品行产生重复记录
		// 价格快照取自持锁读取的商品行
		order = &domain.Order{Status: domain.OrderStatusPending}
		for _, item := range cmd.Items {
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				PriceAtOrder: products[item.ProductID].Price,
			})
		}
		if err := c.orders.Save(txCtx, order); err != nil {
			return err
		}

		for _, id := range ids {
			if err := c.products.DecrementStock(txCtx, id, aggregated[id]); err != nil {
				if errors.Is(err, catalogdomain.ErrStockGuardFailed) {
					return &domain.ContentionError{Cause: err}
				}
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, catalogdomain.ErrLockContention) {
			err = &domain.ContentionError{Cause: err}
		}
		c.collector.RecordOrderRejected(rejectionReason(err))
		return nil, err
	}

	c.collector.RecordOrderCreated()
	c.collector.RecordStockDecrement(len(ids))

	if err := c.cache.Invalidate(ctx, ids...); err != nil {
		logger.Warn(ctx, "Failed to invalidate product cache after order", "order_id", order.ID, "error", err)
	}

	c.publishOrderCreated(ctx, order)
	c.publishStockChanges(ctx, ids, aggregated, locked)

	return order, nil
}

// publishStockChanges 扣减提交后逐商品发布库存变更事件
// 旧值取自持锁读取的商品行，新值即旧值减去聚合扣减量
func (c *OrderCommandService) publishStockChanges(
	ctx context.Context,
	ids []uint,
	aggregated map[uint]int,
	locked map[uint]*catalogdomain.Product,
) {
	for _, id := range ids {
		oldStock := locked[id].StockQuantity
		event := catalogdomain.ProductStockChangedEvent{
			ProductID: id,
			OldStock:  oldStock,
			NewStock:  oldStock - aggregated[id],
			Timestamp: time.Now(),
		}
		if err := c.catalogEvents.PublishProductStockChanged(ctx, event); err != nil {
			logger.Warn(ctx, "Failed to publish stock changed event", "product_id", id, "error", err)
		}
	}
}

// UpdateStatus 订单状态转移
//
// 只锁定订单行本身，不触碰库存与订单项
func (c *OrderCommandService) UpdateStatus(ctx context.Context, orderID uint, target domain.OrderStatus) (*domain.Order, error) {
	var from domain.OrderStatus
	var updated *domain.Order

	err := c.db.Transaction(func(tx *gorm.DB) error {
		txCtx := db.WithTx(ctx, tx)

		order, err := c.orders.GetForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return &domain.OrderNotFoundError{OrderID: orderID}
		}

		if !order.Status.Valid() {
			return errors.New("data integrity error: unknown persisted order status " + string(order.Status))
		}
		if !target.Valid() || !order.Status.CanTransitionTo(target) {
			return &domain.InvalidTransitionError{From: order.Status, To: target}
		}

		from = order.Status
		if err := c.orders.UpdateStatus(txCtx, orderID, target); err != nil {
			return err
		}

		// 事务内回读完整订单，锁还在手里，不会读到并发删除后的空值
		updated, err = c.orders.Get(txCtx, orderID)
		if err != nil {
			return err
		}
		if updated == nil {
			return &domain.OrderNotFoundError{OrderID: orderID}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.publisher.PublishOrderStatusChanged(ctx, domain.OrderStatusChangedEvent{
		OrderID:    orderID,
		From:       from,
		To:         target,
		OccurredOn: time.Now(),
	}); err != nil {
		logger.Warn(ctx, "Failed to publish order status changed event", "order_id", orderID, "error", err)
	}

	return updated, nil
}

func (c *OrderCommandService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	items := make([]domain.OrderItemEvent, len(order.Items))
	for i, item := range order.Items {
		items[i] = domain.OrderItemEvent{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
		}
	}
	event := domain.OrderCreatedEvent{
		OrderID:    order.ID,
		Status:     order.Status,
		Items:      items,
		Total:      order.Total(),
		OccurredOn: time.Now(),
	}
	if err := c.publisher.PublishOrderCreated(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish order created event", "order_id", order.ID, "error", err)
	}
}

func rejectionReason(err error) string {
	var notFound *domain.ProductNotFoundError
	var insufficient *domain.InsufficientStockError
	var contention *domain.ContentionError
	switch {
	case errors.As(err, &notFound):
		return "product_not_found"
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.As(err, &contention):
		return "contention"
	default:
		return "internal"
	}
}
