package repository

import (
	"context"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CreateTx persists a venta inside the caller's transaction. Ventas are
	// append-only: there is no Update or Delete on this interface.
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	SumTotalByCaja(ctx context.Context, cajaID uuid.UUID) (decimal.Decimal, error)
	SumTotalByCajaTx(tx *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error)
	List(ctx context.Context, filter dto.VentaFilter, sucursalIDs []uuid.UUID) ([]model.Venta, int64, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) SumTotalByCaja(ctx context.Context, cajaID uuid.UUID) (decimal.Decimal, error) {
	return sumTotal(r.db.WithContext(ctx), cajaID)
}

func (r *ventaRepo) SumTotalByCajaTx(tx *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error) {
	return sumTotal(tx, cajaID)
}

// sumTotal aggregates in SQL and scans into decimal.Decimal so the closing
// amount is decimal-exact end to end.
func sumTotal(db *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&model.Venta{}).
		Where("caja_id = ?", cajaID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter, sucursalIDs []uuid.UUID) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Joins("JOIN cajas ON cajas.id = ventas.caja_id").
		Where("DATE(ventas.created_at) BETWEEN ? AND ?", filter.Desde, filter.Hasta)

	if sucursalIDs != nil {
		q = q.Where("cajas.sucursal_id IN ?", sucursalIDs)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Producto").
		Order("ventas.created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}
