package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, usuarioID, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, usuarioID uuid.UUID, sucursal string) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, usuarioID, id uuid.UUID) error
}

type productoService struct {
	repo         repository.ProductoRepository
	sucursalRepo repository.SucursalRepository
	permisos     PermisoService
}

func NewProductoService(
	repo repository.ProductoRepository,
	sucursalRepo repository.SucursalRepository,
	permisos PermisoService,
) ProductoService {
	return &productoService{repo: repo, sucursalRepo: sucursalRepo, permisos: permisos}
}

// Catalog writes are administrative; reads follow the caller's sucursales.

func (s *productoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if _, err := s.requireAdmin(ctx, usuarioID); err != nil {
		return nil, err
	}

	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("%w: sucursal_id mal formado", ErrValidacion)
	}
	if _, err := s.sucursalRepo.FindByID(ctx, sucursalID); err != nil {
		return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
	}
	if req.Precio.IsNegative() {
		return nil, fmt.Errorf("%w: el precio no puede ser negativo", ErrValidacion)
	}

	p := &model.Producto{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Stock:       req.Stock,
		SucursalID:  sucursalID,
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	} else {
		p.StockMinimo = 5
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, usuarioID, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: producto", ErrNoEncontrado)
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !perms.PuedeOperarEn(p.SucursalID) {
		return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, usuarioID uuid.UUID, sucursal string) ([]dto.ProductoResponse, error) {
	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if perms.Rol == "" {
		return nil, fmt.Errorf("%w: usuario sin perfil", ErrPermisoDenegado)
	}

	var sucursalIDs []uuid.UUID
	if sucursal != "" {
		sucID, err := uuid.Parse(sucursal)
		if err != nil {
			return nil, fmt.Errorf("%w: sucursal mal formada", ErrValidacion)
		}
		if !perms.PuedeOperarEn(sucID) {
			return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
		}
		sucursalIDs = []uuid.UUID{sucID}
	} else if !perms.Todas {
		sucursalIDs = perms.SucursalIDs
		if sucursalIDs == nil {
			sucursalIDs = []uuid.UUID{}
		}
	}

	productos, err := s.repo.List(ctx, sucursalIDs)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

func (s *productoService) Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if _, err := s.requireAdmin(ctx, usuarioID); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: producto", ErrNoEncontrado)
	}
	if req.Precio.IsNegative() {
		return nil, fmt.Errorf("%w: el precio no puede ser negativo", ErrValidacion)
	}

	p.Nombre = req.Nombre
	p.Descripcion = req.Descripcion
	p.Precio = req.Precio
	p.Stock = req.Stock
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Eliminar(ctx context.Context, usuarioID, id uuid.UUID) error {
	if _, err := s.requireAdmin(ctx, usuarioID); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: producto", ErrNoEncontrado)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		// Ventas reference productos with ON DELETE RESTRICT; a product that
		// already sold stays for the historical record.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrProductoReferenciado
		}
		return err
	}
	return nil
}

func (s *productoService) requireAdmin(ctx context.Context, usuarioID uuid.UUID) (Permisos, error) {
	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return Permisos{}, err
	}
	if !perms.Rol.EsAdministrativo() {
		return Permisos{}, fmt.Errorf("%w: se requiere rol administrativo", ErrPermisoDenegado)
	}
	return perms, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		SucursalID:  p.SucursalID.String(),
		CreadoEn:    p.CreatedAt.Format(time.RFC3339),
	}
}
