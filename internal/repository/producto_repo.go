package repository

import (
	"context"

	"sucursalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via fakes.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, sucursalIDs []uuid.UUID) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	// Delete is a hard delete; the ventas FK is RESTRICT so deleting a
	// referenced producto surfaces gorm.ErrForeignKeyViolated.
	Delete(ctx context.Context, id uuid.UUID) error

	// DescontarStockTx applies the atomic floored decrement inside the
	// caller's transaction: stock = GREATEST(stock - cantidad, 0). Stock
	// never goes negative regardless of concurrent sales.
	DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error

	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, sucursalIDs []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	q := r.db.WithContext(ctx)
	if sucursalIDs != nil {
		q = q.Where("sucursal_id IN ?", sucursalIDs)
	}
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Producto{}, id).Error
}

func (r *productoRepo) DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", cantidad)).Error
}
