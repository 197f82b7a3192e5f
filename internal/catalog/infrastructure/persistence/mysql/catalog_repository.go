package mysql

import (
	"context"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	"github.com/wyfcoding/inventoryorder/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQL 1205: lock wait timeout, 1213: deadlock victim
func wrapLockError(err error) error {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) && (mysqlErr.Number == 1205 || mysqlErr.Number == 1213) {
		return errors.Join(domain.ErrLockContention, err)
	}
	return err
}

type productRepository struct{ db *gorm.DB }

func NewProductRepository(gdb *gorm.DB) domain.ProductRepository {
	return &productRepository{db: gdb}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.getDB(ctx).WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, offset, limit int) ([]*domain.Product, int64, error) {
	var products []*domain.Product
	var total int64

	q := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

// FindForUpdate 对给定商品行加排他锁后返回
// ORDER BY id 保证跨事务的加锁顺序一致，避免交叉死锁
func (r *productRepository) FindForUpdate(ctx context.Context, ids []uint) (map[uint]*domain.Product, error) {
	gdb := r.getDB(ctx).WithContext(ctx)

	q := gdb.Order("id")
	// SQLite 没有 SELECT ... FOR UPDATE，写事务由引擎自身串行化
	if gdb.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var products []*domain.Product
	if err := q.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, wrapLockError(err)
	}

	result := make(map[uint]*domain.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// DecrementStock 带守卫的库存扣减
// WHERE 条件重复校验剩余库存，即使锁语义缺失也不会把库存减成负数
func (r *productRepository) DecrementStock(ctx context.Context, id uint, quantity int) error {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStockGuardFailed
	}
	return nil
}

func (r *productRepository) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) error {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("price", price)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).Count(&total).Error
	return total, err
}

func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}
