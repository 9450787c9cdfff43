package service

import (
	"context"
	"errors"
	"fmt"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SucursalService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.SucursalRequest) (*dto.SucursalResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.SucursalResponse, error)
	Listar(ctx context.Context) ([]dto.SucursalResponse, error)
	Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.SucursalRequest) (*dto.SucursalResponse, error)
	Eliminar(ctx context.Context, usuarioID, id uuid.UUID) error
}

type sucursalService struct {
	repo     repository.SucursalRepository
	permisos PermisoService
}

func NewSucursalService(repo repository.SucursalRepository, permisos PermisoService) SucursalService {
	return &sucursalService{repo: repo, permisos: permisos}
}

func (s *sucursalService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.SucursalRequest) (*dto.SucursalResponse, error) {
	if err := s.requireAdmin(ctx, usuarioID); err != nil {
		return nil, err
	}

	suc := &model.Sucursal{
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
	}
	if err := s.repo.Create(ctx, suc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: ya existe una sucursal con ese nombre", ErrValidacion)
		}
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Obtener(ctx context.Context, id uuid.UUID) (*dto.SucursalResponse, error) {
	suc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Listar(ctx context.Context) ([]dto.SucursalResponse, error) {
	sucursales, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SucursalResponse, 0, len(sucursales))
	for i := range sucursales {
		out = append(out, *sucursalToResponse(&sucursales[i]))
	}
	return out, nil
}

func (s *sucursalService) Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.SucursalRequest) (*dto.SucursalResponse, error) {
	if err := s.requireAdmin(ctx, usuarioID); err != nil {
		return nil, err
	}

	suc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
	}
	suc.Nombre = req.Nombre
	suc.Direccion = req.Direccion
	suc.Telefono = req.Telefono

	if err := s.repo.Update(ctx, suc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: ya existe una sucursal con ese nombre", ErrValidacion)
		}
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Eliminar(ctx context.Context, usuarioID, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, usuarioID); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: sucursal", ErrNoEncontrado)
	}
	return s.repo.Delete(ctx, id)
}

func (s *sucursalService) requireAdmin(ctx context.Context, usuarioID uuid.UUID) error {
	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return err
	}
	if !perms.Rol.EsAdministrativo() {
		return fmt.Errorf("%w: se requiere rol administrativo", ErrPermisoDenegado)
	}
	return nil
}

func sucursalToResponse(s *model.Sucursal) *dto.SucursalResponse {
	return &dto.SucursalResponse{
		ID:        s.ID.String(),
		Nombre:    s.Nombre,
		Direccion: s.Direccion,
		Telefono:  s.Telefono,
	}
}
