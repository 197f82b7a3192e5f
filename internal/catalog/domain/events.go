package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID     uint            `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ProductPriceChangedEvent 商品价格变更事件
type ProductPriceChangedEvent struct {
	ProductID uint            `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Timestamp time.Time       `json:"timestamp"`
}

// ProductStockChangedEvent 商品库存变更事件，订单扣减提交后发布
type ProductStockChangedEvent struct {
	ProductID uint      `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Timestamp time.Time `json:"timestamp"`
}
