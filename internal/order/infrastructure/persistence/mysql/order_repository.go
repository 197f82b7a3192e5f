package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/inventoryorder/internal/order/domain"
	"github.com/wyfcoding/inventoryorder/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct{ db *gorm.DB }

func NewOrderRepository(gdb *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: gdb}
}

// Save 保存订单，订单项通过关联一并写入
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.getDB(ctx).WithContext(ctx).Save(order).Error
}

// Get 获取订单，订单项一次性加载，避免隐式延迟查询
func (r *orderRepository) Get(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.getDB(ctx).WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetForUpdate 加排他锁获取订单行，供状态转移使用
func (r *orderRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Order, error) {
	gdb := r.getDB(ctx).WithContext(ctx)

	q := gdb
	if gdb.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order domain.Order
	err := q.First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error {
	return r.getDB(ctx).WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}
