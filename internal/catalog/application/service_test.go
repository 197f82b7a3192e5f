package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/persistence/mysql"
	"github.com/wyfcoding/inventoryorder/pkg/db"
	"github.com/wyfcoding/inventoryorder/pkg/metrics"
)

type noopCache struct{}

func (noopCache) GetProduct(context.Context, uint) (*domain.Product, bool, error) {
	return nil, false, nil
}
func (noopCache) SetProduct(context.Context, *domain.Product) error { return nil }
func (noopCache) Invalidate(context.Context, ...uint) error         { return nil }

type noopPublisher struct{}

func (noopPublisher) PublishProductCreated(context.Context, domain.ProductCreatedEvent) error {
	return nil
}
func (noopPublisher) PublishProductPriceChanged(context.Context, domain.ProductPriceChangedEvent) error {
	return nil
}
func (noopPublisher) PublishProductStockChanged(context.Context, domain.ProductStockChangedEvent) error {
	return nil
}

func newCatalogService(t *testing.T) *CatalogService {
	t.Helper()

	database, err := db.Init(db.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.AutoMigrate(&domain.Product{}))

	repo := catalogmysql.NewProductRepository(database.DB)
	return NewCatalogService(repo, noopCache{}, noopPublisher{}, metrics.NoopCollector{})
}

func TestCreateProduct(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "widget", decimal.RequireFromString("9.99"), 25)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "widget", p.Name)
	assert.Equal(t, "9.99", p.Price.StringFixed(2))
	assert.Equal(t, 25, p.StockQuantity)

	loaded, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, p.ID, loaded.ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		product string
		price   string
		stock   int
		wantErr *Error
	}{
		{"empty name", "", "1.00", 1, ErrInvalidName},
		{"zero price", "widget", "0", 1, ErrInvalidPrice},
		{"negative price", "widget", "-1.50", 1, ErrInvalidPrice},
		{"too many decimal places", "widget", "1.999", 1, ErrInvalidPrice},
		{"negative stock", "widget", "1.00", -1, ErrInvalidStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.product, decimal.RequireFromString(tc.price), tc.stock)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// 零库存建档是合法的
	_, err := svc.CreateProduct(ctx, "widget", decimal.RequireFromString("1.00"), 0)
	assert.NoError(t, err)
}

func TestGetProductNotFound(t *testing.T) {
	svc := newCatalogService(t)

	p, err := svc.GetProduct(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestListProducts(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := svc.CreateProduct(ctx, fmt.Sprintf("product-%02d", i), decimal.RequireFromString("1.00"), 1)
		require.NoError(t, err)
	}

	page, total, err := svc.ListProducts(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, page, 10)
	assert.Equal(t, "product-00", page[0].Name)

	page, total, err = svc.ListProducts(ctx, 10, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, page, 5)
	assert.Equal(t, "product-10", page[0].Name)

	// 越过末尾返回空页
	page, _, err = svc.ListProducts(ctx, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestUpdatePrice(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "widget", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, err)

	updated, err := svc.UpdatePrice(ctx, p.ID, decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "12.50", updated.Price.StringFixed(2))

	loaded, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.50", loaded.Price.StringFixed(2))

	// 改价不触碰库存
	assert.Equal(t, 5, loaded.StockQuantity)

	_, err = svc.UpdatePrice(ctx, p.ID, decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	missing, err := svc.UpdatePrice(ctx, 99999, decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
