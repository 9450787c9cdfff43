package repository

import (
	"context"
	"time"

	"sucursalpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row-lock strengths for FindAbiertaTx.
const (
	BloqueoCompartido = "SHARE"
	BloqueoExclusivo  = "UPDATE"
)

type CajaRepository interface {
	Create(ctx context.Context, c *model.Caja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	// FindByIDConVentas preloads ventas most-recent-first with their producto.
	FindByIDConVentas(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	ExistePorFecha(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (bool, error)
	ListByFecha(ctx context.Context, sucursalIDs []uuid.UUID, fecha time.Time) ([]model.Caja, error)
	// CerrarTx performs the one-way ABIERTA→CERRADA transition as a single
	// conditional UPDATE. Returns the number of rows affected: 0 means the
	// caja was not ABIERTA (already closed or missing).
	CerrarTx(tx *gorm.DB, id uuid.UUID, cierreMonto decimal.Decimal, usuarioID uuid.UUID, cerradaEn time.Time) (int64, error)

	// FindAbiertaTx reloads the caja inside the caller's transaction taking a
	// row lock, re-checking estado = ABIERTA. Ventas lock with
	// BloqueoCompartido so they serialize against a concurrent close; Cerrar
	// locks with BloqueoExclusivo so its sum runs after in-flight ventas
	// commit. Returns gorm.ErrRecordNotFound when the caja is missing or
	// already CERRADA.
	FindAbiertaTx(tx *gorm.DB, id uuid.UUID, fuerza string) (*model.Caja, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) Create(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) FindByIDConVentas(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Preload("Sucursal").
		Preload("Ventas", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Ventas.Producto").
		First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) ExistePorFecha(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Caja{}).
		Where("sucursal_id = ? AND fecha = ?", sucursalID, fecha).
		Count(&count).Error
	return count > 0, err
}

func (r *cajaRepo) ListByFecha(ctx context.Context, sucursalIDs []uuid.UUID, fecha time.Time) ([]model.Caja, error) {
	var cajas []model.Caja
	q := r.db.WithContext(ctx).Preload("Sucursal").Where("fecha = ?", fecha)
	// nil sucursalIDs means no restriction (administrative grant)
	if sucursalIDs != nil {
		q = q.Where("sucursal_id IN ?", sucursalIDs)
	}
	err := q.Order("created_at DESC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) FindAbiertaTx(tx *gorm.DB, id uuid.UUID, fuerza string) (*model.Caja, error) {
	var c model.Caja
	err := tx.Clauses(clause.Locking{Strength: fuerza}).
		Where("id = ? AND estado = ?", id, model.CajaAbierta).
		First(&c).Error
	return &c, err
}

func (r *cajaRepo) CerrarTx(tx *gorm.DB, id uuid.UUID, cierreMonto decimal.Decimal, usuarioID uuid.UUID, cerradaEn time.Time) (int64, error) {
	res := tx.Model(&model.Caja{}).
		Where("id = ? AND estado = ?", id, model.CajaAbierta).
		Updates(map[string]interface{}{
			"estado":            model.CajaCerrada,
			"cierre_monto":      cierreMonto,
			"cierre_usuario_id": usuarioID,
			"cerrada_en":        cerradaEn,
		})
	return res.RowsAffected, res.Error
}
