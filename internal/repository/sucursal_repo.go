package repository

import (
	"context"

	"sucursalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SucursalRepository interface {
	Create(ctx context.Context, s *model.Sucursal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	List(ctx context.Context) ([]model.Sucursal, error)
	Update(ctx context.Context, s *model.Sucursal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) Create(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *sucursalRepo) List(ctx context.Context) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&sucursales).Error
	return sucursales, err
}

func (r *sucursalRepo) Update(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sucursalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Sucursal{}, id).Error
}
