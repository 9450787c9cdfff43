package repository

import (
	"context"

	"sucursalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	// Create persists the usuario and its associated perfil in one
	// transaction (GORM cascades the association).
	Create(ctx context.Context, u *model.Usuario) error
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	FindPerfilByUsuarioID(ctx context.Context, usuarioID uuid.UUID) (*model.Perfil, error)
	List(ctx context.Context) ([]model.Usuario, error)
	ActualizarPerfil(ctx context.Context, perfil *model.Perfil, sucursales []model.Sucursal) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Preload("Perfil").
		Where("username = ? AND activo = true", username).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Perfil").First(&u, id).Error
	return &u, err
}

func (r *usuarioRepo) FindPerfilByUsuarioID(ctx context.Context, usuarioID uuid.UUID) (*model.Perfil, error) {
	var p model.Perfil
	err := r.db.WithContext(ctx).
		Preload("Sucursales").
		Where("usuario_id = ?", usuarioID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *usuarioRepo) List(ctx context.Context) ([]model.Usuario, error) {
	var usuarios []model.Usuario
	err := r.db.WithContext(ctx).Preload("Perfil.Sucursales").Order("username ASC").Find(&usuarios).Error
	return usuarios, err
}

func (r *usuarioRepo) ActualizarPerfil(ctx context.Context, perfil *model.Perfil, sucursales []model.Sucursal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(perfil).Update("rol", perfil.Rol).Error; err != nil {
			return err
		}
		return tx.Model(perfil).Association("Sucursales").Replace(sucursales)
	})
}
