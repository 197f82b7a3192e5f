// Package domain 包含商品目录与库存的领域模型
package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品实体，库存计数的唯一持有者
// 库存只允许订单事务引擎扣减，不存在其他写入路径
type Product struct {
	gorm.Model
	Name          string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
}

func (Product) TableName() string { return "products" }

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 保存商品
	Save(ctx context.Context, product *Product) error
	// 按 ID 获取商品，不存在时返回 nil
	GetByID(ctx context.Context, id uint) (*Product, error)
	// 按 ID 升序分页列出商品，返回总数
	List(ctx context.Context, offset, limit int) ([]*Product, int64, error)
	// 按 ID 升序加排他锁批量获取商品，结果只包含存在的 ID
	FindForUpdate(ctx context.Context, ids []uint) (map[uint]*Product, error)
	// 扣减库存，库存不足时不产生任何变更
	DecrementStock(ctx context.Context, id uint, quantity int) error
	// 更新商品价格
	UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) error
	// 商品总数
	Count(ctx context.Context) (int64, error)
}

// EventPublisher 商品事件发布者接口
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, event ProductCreatedEvent) error
	PublishProductPriceChanged(ctx context.Context, event ProductPriceChangedEvent) error
	PublishProductStockChanged(ctx context.Context, event ProductStockChangedEvent) error
}
