// Package application 实现商品目录的应用服务
package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	"github.com/wyfcoding/inventoryorder/pkg/logger"
	"github.com/wyfcoding/inventoryorder/pkg/metrics"
)

// ProductCache 商品读缓存接口，Redis 实现见 infrastructure/persistence/redis
type ProductCache interface {
	GetProduct(ctx context.Context, id uint) (*domain.Product, bool, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	Invalidate(ctx context.Context, ids ...uint) error
}

// CatalogService 商品目录应用服务
type CatalogService struct {
	repo      domain.ProductRepository
	cache     ProductCache
	publisher domain.EventPublisher
	collector metrics.Collector
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(repo domain.ProductRepository, cache ProductCache, publisher domain.EventPublisher, collector metrics.Collector) *CatalogService {
	return &CatalogService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		collector: collector,
	}
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, stockQuantity int) (*domain.Product, error) {
	if err := validateProduct(name, price, stockQuantity); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:          name,
		Price:         price,
		StockQuantity: stockQuantity,
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishProductCreated(ctx, domain.ProductCreatedEvent{
		ProductID:     product.ID,
		Name:          product.Name,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		Timestamp:     time.Now(),
	}); err != nil {
		logger.Warn(ctx, "Failed to publish product created event", "product_id", product.ID, "error", err)
	}

	if total, err := s.repo.Count(ctx); err == nil {
		s.collector.SetProductsTotal(total)
	}

	return product, nil
}

// GetProduct 获取单个商品，优先走缓存，不存在时返回 nil
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if cached, ok, err := s.cache.GetProduct(ctx, id); err == nil && ok {
		return cached, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		logger.Warn(ctx, "Failed to cache product", "product_id", id, "error", err)
	}
	return product, nil
}

// ListProducts 按 ID 升序分页列出商品
func (s *CatalogService) ListProducts(ctx context.Context, skip, limit int) ([]*domain.Product, int64, error) {
	return s.repo.List(ctx, skip, limit)
}

// UpdatePrice 更新商品价格
// 价格变更不影响既有订单项的 price_at_order 快照
func (s *CatalogService) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) (*domain.Product, error) {
	if !price.IsPositive() || price.Exponent() < -2 {
		return nil, ErrInvalidPrice
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	if err := s.repo.UpdatePrice(ctx, id, price); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Warn(ctx, "Failed to invalidate product cache", "product_id", id, "error", err)
	}

	if err := s.publisher.PublishProductPriceChanged(ctx, domain.ProductPriceChangedEvent{
		ProductID: id,
		OldPrice:  current.Price,
		NewPrice:  price,
		Timestamp: time.Now(),
	}); err != nil {
		logger.Warn(ctx, "Failed to publish price changed event", "product_id", id, "error", err)
	}

	current.Price = price
	return current, nil
}

func validateProduct(name string, price decimal.Decimal, stockQuantity int) error {
	if name == "" || len(name) > 255 {
		return ErrInvalidName
	}
	if !price.IsPositive() || price.Exponent() < -2 {
		return ErrInvalidPrice
	}
	if stockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}
